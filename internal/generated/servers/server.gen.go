// Package servers provides primitives to interact with the openapi HTTP API.
//
// The types and handlers follow the oapi-codegen layout and are kept in step with
// openapi.yaml by hand. Running go generate replaces them with generated output.
package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Finalize queued orders whose offer window has passed
	// (POST /api/v1/cron/queue-expiry)
	RunQueueExpiry(ctx echo.Context, params RunQueueExpiryParams) error
	// Confirm scheduled orders that are due
	// (POST /api/v1/cron/scheduled-confirm)
	RunScheduledConfirm(ctx echo.Context, params RunScheduledConfirmParams) error
	// Accept a checkout and create the order
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// Read an order
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId OrderId) error
	// Cancel an order
	// (POST /api/v1/orders/{orderId}/cancel)
	CancelOrder(ctx echo.Context, orderId OrderId) error
	// Confirm a pending or scheduled order
	// (POST /api/v1/orders/{orderId}/confirm)
	ConfirmOrder(ctx echo.Context, orderId OrderId) error
	// List recent orders placed with the same phone
	// (GET /api/v1/orders/{orderId}/duplicates)
	GetOrderDuplicates(ctx echo.Context, orderId OrderId, params GetOrderDuplicatesParams) error
	// Close the upsell offer of a queued order without an upsell
	// (POST /api/v1/orders/{orderId}/finalize)
	FinalizeOrder(ctx echo.Context, orderId OrderId) error
	// Put a pending order on hold after the fulfillment system confirms it
	// (POST /api/v1/orders/{orderId}/hold)
	HoldOrder(ctx echo.Context, orderId OrderId) error
	// Promote a test order to a real pending order
	// (POST /api/v1/orders/{orderId}/promote)
	PromoteOrder(ctx echo.Context, orderId OrderId) error
	// Retry creating an unlinked order in the fulfillment system
	// (POST /api/v1/orders/{orderId}/resync)
	ResyncOrder(ctx echo.Context, orderId OrderId) error
	// Postpone shipping of a pending order to a later day
	// (POST /api/v1/orders/{orderId}/schedule)
	ScheduleOrder(ctx echo.Context, orderId OrderId) error
	// Restore a cancelled order to the status it was cancelled from
	// (POST /api/v1/orders/{orderId}/uncancel)
	UncancelOrder(ctx echo.Context, orderId OrderId) error
	// Return a held order to the status it was held from
	// (POST /api/v1/orders/{orderId}/unhold)
	UnholdOrder(ctx echo.Context, orderId OrderId) error
	// Accept the post-purchase upsell offer of a queued order
	// (POST /api/v1/orders/{orderId}/upsells)
	AttachPostsaleUpsell(ctx echo.Context, orderId OrderId) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// RunQueueExpiry converts echo context to params.
func (w *ServerInterfaceWrapper) RunQueueExpiry(ctx echo.Context) error {
	var err error

	ctx.Set(CronBearerScopes, []string{})

	// Parameter object where we will unmarshal all parameters from the context
	var params RunQueueExpiryParams
	// ------------- Optional query parameter "batchSize" -------------

	err = runtime.BindQueryParameter("form", true, false, "batchSize", ctx.QueryParams(), &params.BatchSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter batchSize: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.RunQueueExpiry(ctx, params)
	return err
}

// RunScheduledConfirm converts echo context to params.
func (w *ServerInterfaceWrapper) RunScheduledConfirm(ctx echo.Context) error {
	var err error

	ctx.Set(CronBearerScopes, []string{})

	// Parameter object where we will unmarshal all parameters from the context
	var params RunScheduledConfirmParams
	// ------------- Optional query parameter "batchSize" -------------

	err = runtime.BindQueryParameter("form", true, false, "batchSize", ctx.QueryParams(), &params.BatchSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter batchSize: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.RunScheduledConfirm(ctx, params)
	return err
}

// CreateOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	var err error

	ctx.Set(OrganizationHeaderScopes, []string{})

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.CreateOrder(ctx)
	return err
}

// GetOrder converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "orderId" -------------
	var orderId OrderId

	err = runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	ctx.Set(OrganizationHeaderScopes, []string{})

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetOrder(ctx, orderId)
	return err
}

// CancelOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.CancelOrder)
}

// ConfirmOrder converts echo context to params.
func (w *ServerInterfaceWrapper) ConfirmOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.ConfirmOrder)
}

// GetOrderDuplicates converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrderDuplicates(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "orderId" -------------
	var orderId OrderId

	err = runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	ctx.Set(OrganizationHeaderScopes, []string{})

	// Parameter object where we will unmarshal all parameters from the context
	var params GetOrderDuplicatesParams
	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetOrderDuplicates(ctx, orderId, params)
	return err
}

// FinalizeOrder converts echo context to params.
func (w *ServerInterfaceWrapper) FinalizeOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.FinalizeOrder)
}

// HoldOrder converts echo context to params.
func (w *ServerInterfaceWrapper) HoldOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.HoldOrder)
}

// PromoteOrder converts echo context to params.
func (w *ServerInterfaceWrapper) PromoteOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.PromoteOrder)
}

// ResyncOrder converts echo context to params.
func (w *ServerInterfaceWrapper) ResyncOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.ResyncOrder)
}

// ScheduleOrder converts echo context to params.
func (w *ServerInterfaceWrapper) ScheduleOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.ScheduleOrder)
}

// UncancelOrder converts echo context to params.
func (w *ServerInterfaceWrapper) UncancelOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.UncancelOrder)
}

// UnholdOrder converts echo context to params.
func (w *ServerInterfaceWrapper) UnholdOrder(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.UnholdOrder)
}

// AttachPostsaleUpsell converts echo context to params.
func (w *ServerInterfaceWrapper) AttachPostsaleUpsell(ctx echo.Context) error {
	return w.withOrderID(ctx, w.Handler.AttachPostsaleUpsell)
}

func (w *ServerInterfaceWrapper) withOrderID(ctx echo.Context, handler func(echo.Context, openapi_types.UUID) error) error {
	var err error
	// ------------- Path parameter "orderId" -------------
	var orderId OrderId

	err = runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	ctx.Set(OrganizationHeaderScopes, []string{})

	// Invoke the callback with all the unmarshaled arguments
	err = handler(ctx, orderId)
	return err
}

// This is a simple interface which specifies echo.Route addition functions which
// are present on both echo.Echo and echo.Group, since we want to allow using
// either of them for path registration
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// Registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {

	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/cron/queue-expiry", wrapper.RunQueueExpiry)
	router.POST(baseURL+"/api/v1/cron/scheduled-confirm", wrapper.RunScheduledConfirm)
	router.POST(baseURL+"/api/v1/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/v1/orders/:orderId", wrapper.GetOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/cancel", wrapper.CancelOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/confirm", wrapper.ConfirmOrder)
	router.GET(baseURL+"/api/v1/orders/:orderId/duplicates", wrapper.GetOrderDuplicates)
	router.POST(baseURL+"/api/v1/orders/:orderId/finalize", wrapper.FinalizeOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/hold", wrapper.HoldOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/promote", wrapper.PromoteOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/resync", wrapper.ResyncOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/schedule", wrapper.ScheduleOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/uncancel", wrapper.UncancelOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/unhold", wrapper.UnholdOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/upsells", wrapper.AttachPostsaleUpsell)

}
