package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mockfolio/internal/apierr"
	"mockfolio/internal/query"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 500

type listParams struct {
	page   int
	size   int
	sortBy string
	dir    query.Direction
}

type listDefaults struct {
	size   int
	sortBy string
	dir    query.Direction
}

var (
	positionDefaults = listDefaults{size: 50, sortBy: "market_value", dir: query.Desc}
	tradeDefaults    = listDefaults{size: 20, sortBy: "date", dir: query.Desc}
	lotDefaults      = listDefaults{size: 20, sortBy: "date", dir: query.Desc}
)

// parseList reads page, size, sort_by and sort_order. Malformed values give a
// 422; a sort_by outside fields gives the 400 sort error.
func parseList[T any](c *gin.Context, fields query.Fields[T], def listDefaults) (listParams, *apierr.Error) {
	p := listParams{sortBy: def.sortBy, dir: def.dir}
	var errs []apierr.FieldError

	var fe *apierr.FieldError
	if p.page, fe = intParam(c, "page", 1); fe != nil {
		errs = append(errs, *fe)
	}
	if p.size, fe = intParam(c, "size", def.size); fe != nil {
		errs = append(errs, *fe)
	}
	if p.size > maxPageSize {
		errs = append(errs, apierr.Query("size", fmt.Sprintf("Input should be less than or equal to %d", maxPageSize), "less_than_equal"))
	}
	if raw, ok := c.GetQuery("sort_order"); ok {
		dir, valid := query.ParseDirection(raw)
		if !valid {
			errs = append(errs, apierr.Query("sort_order", "Input should be 'asc' or 'desc'", "literal_error"))
		}
		p.dir = dir
	}
	if len(errs) > 0 {
		return p, apierr.Validation(http.StatusUnprocessableEntity, errs...)
	}

	if raw, ok := c.GetQuery("sort_by"); ok {
		p.sortBy = raw
	}
	if !fields.Has(p.sortBy) {
		return p, apierr.InvalidSortField
	}
	return p, nil
}

func intParam(c *gin.Context, name string, def int) (int, *apierr.FieldError) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		fe := apierr.Query(name, "Input should be a valid integer", "int_parsing")
		return def, &fe
	}
	if n < 1 {
		fe := apierr.Query(name, "Input should be greater than or equal to 1", "greater_than_equal")
		return def, &fe
	}
	return n, nil
}

// csvParam splits a comma-separated query value, trimming each entry and
// dropping empty ones.
func csvParam(c *gin.Context, name string) []string {
	var out []string
	for _, part := range strings.Split(c.Query(name), ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
