package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error codes carried in the body of failed responses.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeSyncUnconfirmed     = "SYNC_UNCONFIRMED"
	CodeOfferExpired        = "OFFER_EXPIRED"
	CodeExternalUnavailable = "EXTERNAL_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is ordered: the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{errs.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{errs.ErrSyncUnconfirmed, http.StatusConflict, CodeSyncUnconfirmed},
	{errs.ErrOfferExpired, http.StatusGone, CodeOfferExpired},
	{errs.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
	{order.ErrAlreadyLinked, http.StatusConflict, CodeInvalidTransition},
	{errs.ErrExternalUnavailable, http.StatusBadGateway, CodeExternalUnavailable},
	{errs.ErrObjectNotFound, http.StatusNotFound, CodeNotFound},
	{errs.ErrValueIsRequired, http.StatusUnprocessableEntity, CodeValidationFailed},
	{errs.ErrValueIsInvalid, http.StatusUnprocessableEntity, CodeValidationFailed},
	{errs.ErrValueIsOutOfRange, http.StatusUnprocessableEntity, CodeValidationFailed},
}

// fail writes err as an error body. Unknown errors are logged and hidden behind a 500.
func (s *Server) fail(ctx echo.Context, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				s.logger.Warn("request failed",
					zap.String("path", ctx.Path()), zap.Int("status", m.status), zap.Error(err))
			}
			return writeError(ctx, m.status, m.code, err.Error())
		}
	}

	s.logger.Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
	return writeError(ctx, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

func (s *Server) badRequest(ctx echo.Context, message string) error {
	return writeError(ctx, http.StatusBadRequest, CodeBadRequest, message)
}

func writeError(ctx echo.Context, status int, code, message string) error {
	return ctx.JSON(status, servers.Error{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// HTTPErrorHandler renders errors raised outside the server methods, such as unknown
// routes and malformed path parameters, with the same body as handled errors.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.Error("unhandled error", zap.String("path", ctx.Path()), zap.Error(err))
		}

		code := CodeBadRequest
		switch status {
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusUnauthorized:
			code = CodeUnauthorized
		case http.StatusForbidden:
			code = CodeForbidden
		case http.StatusMethodNotAllowed:
			code = CodeBadRequest
		case http.StatusInternalServerError:
			code = CodeInternal
		}

		if writeErr := writeError(ctx, status, code, message); writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}
