package http

import (
	"fmt"
	"net/http"
	"sync"

	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// apiDoc serves the OpenAPI document to the swagger UI.
type apiDoc struct {
	json string
}

func (d apiDoc) ReadDoc() string {
	return d.json
}

var registerDocOnce sync.Once

// Mount registers the order API, the swagger UI and the health check on e.
func Mount(e *echo.Echo, server *Server, cronSecret string, logger *zap.Logger) error {
	swagger, err := servers.GetSwagger()
	if err != nil {
		return err
	}

	docJSON, err := swagger.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}
	registerDocOnce.Do(func() {
		swag.Register(swag.Name, apiDoc{json: string(docJSON)})
	})

	validator, err := RequestValidator(swagger, cronSecret)
	if err != nil {
		return err
	}

	e.HTTPErrorHandler = HTTPErrorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("", validator)
	servers.RegisterHandlers(api, server)

	return nil
}
