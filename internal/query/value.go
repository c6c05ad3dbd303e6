package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

type kind uint8

const (
	kindNull kind = iota
	kindString
	kindNumber
	kindTime
)

// Value is a sortable field value extracted from a row.
type Value struct {
	kind kind
	str  string
	num  decimal.Decimal
	at   time.Time
}

// Null is the value that sorts last.
func Null() Value { return Value{} }

// String is compared with locale-aware collation.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number wraps a nullable decimal; an invalid decimal is a null value.
func Number(d decimal.NullDecimal) Value {
	if !d.Valid {
		return Value{}
	}
	return Value{kind: kindNumber, num: d.Decimal}
}

// Date parses s into an instant. Strings that do not parse are null.
func Date(s string) Value {
	t, ok := ParseDate(s)
	if !ok {
		return Value{}
	}
	return Value{kind: kindTime, at: t}
}

// IsNull reports whether v sorts last.
func (v Value) IsNull() bool { return v.kind == kindNull }

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate accepts a calendar date or a timestamp. An explicit offset is kept,
// so Weekday and Day read the date as written; dates without a zone are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compare orders two non-null values of possibly different kinds.
func compare(c *collate.Collator, a, b Value) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case kindString:
		return c.CompareString(a.str, b.str)
	case kindNumber:
		return a.num.Cmp(b.num)
	case kindTime:
		return a.at.Compare(b.at)
	}
	return 0
}
