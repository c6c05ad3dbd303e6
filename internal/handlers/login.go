package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mockfolio/internal/apierr"
	"mockfolio/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// LoginRequest accepts the OAuth2 password form or a JSON body.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if !h.set.Authenticate(req.Username, req.Password) {
		h.countLogin("invalid")
		h.fail(c, apierr.InvalidCredentials)
		return
	}

	token, err := h.issuer.Issue(req.Username)
	if err != nil {
		h.fail(c, apierr.Detail(http.StatusInternalServerError, "could not issue token"))
		return
	}
	h.countLogin("success")
	h.log.Infof("mock login for %s", req.Username)
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: auth.TokenType})
}

func (h *Handler) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

// bindError turns a gin binding failure into a body-scoped 422.
func bindError(err error) *apierr.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.Validation(http.StatusUnprocessableEntity,
			apierr.FieldError{Loc: []string{"body"}, Msg: "Could not decode request body", Type: "value_error"})
	}
	fields := make([]apierr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			fields = append(fields, apierr.Body(name, "Field required", "missing"))
			continue
		}
		fields = append(fields, apierr.Body(name, fe.Error(), "value_error"))
	}
	return apierr.Validation(http.StatusUnprocessableEntity, fields...)
}
