package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

// OrganizationHeader carries the organization the caller acts for.
const OrganizationHeader = "X-Organization-ID"

const (
	organizationScheme = "organizationHeader"
	cronScheme         = "cronBearer"
)

var (
	errMissingOrganization = fmt.Errorf("%w: %s header is required", errs.ErrUnauthorized, OrganizationHeader)
	errInvalidCronSecret   = fmt.Errorf("%w: invalid scheduler credentials", errs.ErrUnauthorized)
)

// RequestValidator checks every request against the OpenAPI document before it reaches
// the server: parameters and bodies are validated and the security scheme of the
// operation is enforced. Requests for paths outside the document pass through.
func RequestValidator(swagger *openapi3.T, cronSecret string) (echo.MiddlewareFunc, error) {
	swagger.Servers = nil

	router, err := legacy.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		MultiError:         false,
		AuthenticationFunc: authenticator(cronSecret),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()

			route, pathParams, findErr := router.FindRoute(req)
			if errors.Is(findErr, routers.ErrPathNotFound) || errors.Is(findErr, routers.ErrMethodNotAllowed) {
				return next(ctx)
			}
			if findErr != nil {
				return writeError(ctx, http.StatusBadRequest, CodeBadRequest, findErr.Error())
			}

			validationErr := openapi3filter.ValidateRequest(req.Context(), &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			})
			if validationErr != nil {
				var securityErr *openapi3filter.SecurityRequirementsError
				if errors.As(validationErr, &securityErr) {
					return writeError(ctx, http.StatusUnauthorized, CodeUnauthorized, securityMessage(securityErr))
				}
				return writeError(ctx, http.StatusBadRequest, CodeValidationFailed, validationErr.Error())
			}

			return next(ctx)
		}
	}, nil
}

func authenticator(cronSecret string) openapi3filter.AuthenticationFunc {
	return func(_ context.Context, input *openapi3filter.AuthenticationInput) error {
		req := input.RequestValidationInput.Request
		switch input.SecuritySchemeName {
		case organizationScheme:
			_, err := organizationFromHeader(req.Header.Get(OrganizationHeader))
			return err
		case cronScheme:
			if !validCronCredentials(req.Header.Get(echo.HeaderAuthorization), cronSecret) {
				return errInvalidCronSecret
			}
			return nil
		default:
			return fmt.Errorf("%w: unsupported security scheme %q", errs.ErrUnauthorized, input.SecuritySchemeName)
		}
	}
}

func validCronCredentials(authorization, secret string) bool {
	if secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func securityMessage(err *openapi3filter.SecurityRequirementsError) string {
	for _, e := range err.Errors {
		if errors.Is(e, errs.ErrUnauthorized) {
			return e.Error()
		}
	}
	return "missing or invalid credentials"
}

func organizationFromRequest(ctx echo.Context) (kernel.UUID, error) {
	return organizationFromHeader(ctx.Request().Header.Get(OrganizationHeader))
}

func organizationFromHeader(raw string) (kernel.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return kernel.UUID{}, errMissingOrganization
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: %s header: %w", errs.ErrUnauthorized, OrganizationHeader, err)
	}
	return id, nil
}

// bindOptional binds a request body that may be absent.
func bindOptional(ctx echo.Context, dest any) error {
	if err := ctx.Bind(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
