package http

import (
	"context"
	"net/http"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

// Handler is a command or query handler as seen by the HTTP layer.
type Handler[C, R any] interface {
	Handle(ctx context.Context, c C) (R, error)
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	// Command handlers
	CreateOrder          Handler[commands.CreateOrderCommand, commands.CreateOrderResult]
	ConfirmOrder         Handler[commands.ConfirmOrderCommand, commands.TransitionResult]
	HoldOrder            Handler[commands.HoldOrderCommand, commands.TransitionResult]
	UnholdOrder          Handler[commands.UnholdOrderCommand, commands.TransitionResult]
	CancelOrder          Handler[commands.CancelOrderCommand, commands.TransitionResult]
	UncancelOrder        Handler[commands.UncancelOrderCommand, commands.TransitionResult]
	FinalizeOrder        Handler[commands.FinalizeOrderCommand, commands.TransitionResult]
	PromoteOrder         Handler[commands.PromoteOrderCommand, commands.TransitionResult]
	ResyncOrder          Handler[commands.ResyncOrderCommand, commands.TransitionResult]
	ScheduleOrder        Handler[commands.ScheduleOrderCommand, commands.TransitionResult]
	AttachPostsaleUpsell Handler[commands.AttachPostsaleUpsellCommand, commands.TransitionResult]
	ExpireQueuedOrders   Handler[commands.ExpireQueuedOrdersCommand, commands.SweepSummary]
	ConfirmScheduled     Handler[commands.ConfirmScheduledOrdersCommand, commands.SweepSummary]

	// Query handlers
	GetOrder       Handler[queries.GetOrderQuery, queries.OrderView]
	FindDuplicates Handler[queries.FindDuplicateOrdersQuery, queries.FindDuplicateOrdersQueryResponse]
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	location *time.Location
	logger   *zap.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
// Calendar dates in requests are interpreted in location.
func NewServer(handlers Handlers, location *time.Location, logger *zap.Logger) *Server {
	if location == nil {
		location = time.UTC
	}
	return &Server{
		handlers: handlers,
		location: location,
		logger:   logger.With(zap.String("component", "http")),
	}
}

// CreateOrder handles POST /api/v1/orders - registers a checkout.
func (s *Server) CreateOrder(ctx echo.Context) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.CreateOrderJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	in, err := createOrderInput(organizationID, body)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(in)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, servers.CreateOrderResponse{
		Success:        true,
		Order:          orderFromDomain(result.Order),
		DuplicateCount: result.DuplicateCount,
		SyncFailed:     result.SyncFailed,
	})
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromView(view))
}

// GetOrderDuplicates handles GET /api/v1/orders/{orderId}/duplicates.
func (s *Server) GetOrderDuplicates(ctx echo.Context, orderId servers.OrderId, params servers.GetOrderDuplicatesParams) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var statuses []order.Status
	if params.Status != nil {
		for _, raw := range *params.Status {
			st, parseErr := order.ParseStatus(string(raw))
			if parseErr != nil {
				return s.fail(ctx, parseErr)
			}
			statuses = append(statuses, st)
		}
	}

	query, err := queries.NewFindDuplicateOrdersQuery(uuidFromAPI(orderId), organizationID, statuses...)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp, err := s.handlers.FindDuplicates.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, duplicatesFromView(resp))
}

// ConfirmOrder handles POST /api/v1/orders/{orderId}/confirm. The body is optional and
// carries delivery corrections.
func (s *Server) ConfirmOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.ConfirmOrderJSONRequestBody
	if err = bindOptional(ctx, &body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	patch, err := deliveryPatchFromAPI(body.Delivery)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewConfirmOrderCommand(uuidFromAPI(orderId), organizationID, patch)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.ConfirmOrder.Handle(c, cmd)
	})
}

// HoldOrder handles POST /api/v1/orders/{orderId}/hold.
func (s *Server) HoldOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.HoldOrderJSONRequestBody
	if err = bindOptional(ctx, &body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewHoldOrderCommand(uuidFromAPI(orderId), organizationID, deref(body.Note))
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.HoldOrder.Handle(c, cmd)
	})
}

// UnholdOrder handles POST /api/v1/orders/{orderId}/unhold.
func (s *Server) UnholdOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUnholdOrderCommand(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.UnholdOrder.Handle(c, cmd)
	})
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel. Cancelling a cancelled order
// succeeds with alreadyCancelled set.
func (s *Server) CancelOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.CancelOrderJSONRequestBody
	if err = bindOptional(ctx, &body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(uuidFromAPI(orderId), organizationID, deref(body.Note), deref(body.CancellerName))
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.CancelOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.CancelOrderResponse{
		Success:          true,
		Order:            orderFromDomain(result.Order),
		AlreadyCancelled: result.NoOp,
	})
}

// UncancelOrder handles POST /api/v1/orders/{orderId}/uncancel.
func (s *Server) UncancelOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUncancelOrderCommand(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.UncancelOrder.Handle(c, cmd)
	})
}

// FinalizeOrder handles POST /api/v1/orders/{orderId}/finalize.
func (s *Server) FinalizeOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewFinalizeOrderCommand(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.FinalizeOrder.Handle(c, cmd)
	})
}

// PromoteOrder handles POST /api/v1/orders/{orderId}/promote.
func (s *Server) PromoteOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewPromoteOrderCommand(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.PromoteOrder.Handle(c, cmd)
	})
}

// ResyncOrder handles POST /api/v1/orders/{orderId}/resync.
func (s *Server) ResyncOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewResyncOrderCommand(uuidFromAPI(orderId), organizationID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.ResyncOrder.Handle(c, cmd)
	})
}

// ScheduleOrder handles POST /api/v1/orders/{orderId}/schedule.
func (s *Server) ScheduleOrder(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.ScheduleOrderJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewScheduleOrderCommand(uuidFromAPI(orderId), organizationID, s.localDay(body.Date))
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.ScheduleOrder.Handle(c, cmd)
	})
}

// AttachPostsaleUpsell handles POST /api/v1/orders/{orderId}/upsells.
func (s *Server) AttachPostsaleUpsell(ctx echo.Context, orderId servers.OrderId) error {
	organizationID, err := organizationFromRequest(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body servers.AttachPostsaleUpsellJSONRequestBody
	if err = ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAttachPostsaleUpsellCommand(uuidFromAPI(orderId), organizationID, uuidFromAPI(body.UpsellId))
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.transition(ctx, func(c context.Context) (commands.TransitionResult, error) {
		return s.handlers.AttachPostsaleUpsell.Handle(c, cmd)
	})
}

// RunQueueExpiry handles POST /api/v1/cron/queue-expiry.
func (s *Server) RunQueueExpiry(ctx echo.Context, params servers.RunQueueExpiryParams) error {
	cmd, err := commands.NewExpireQueuedOrdersCommand(deref(params.BatchSize))
	if err != nil {
		return s.fail(ctx, err)
	}

	summary, err := s.handlers.ExpireQueuedOrders.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cronResponse("queue expiry", summary))
}

// RunScheduledConfirm handles POST /api/v1/cron/scheduled-confirm.
func (s *Server) RunScheduledConfirm(ctx echo.Context, params servers.RunScheduledConfirmParams) error {
	cmd, err := commands.NewConfirmScheduledOrdersCommand(deref(params.BatchSize))
	if err != nil {
		return s.fail(ctx, err)
	}

	summary, err := s.handlers.ConfirmScheduled.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cronResponse("scheduled confirm", summary))
}

// transition runs a command that answers with a TransitionResult. A transition that
// committed but failed to reach the fulfillment system is still reported as an error.
func (s *Server) transition(ctx echo.Context, run func(context.Context) (commands.TransitionResult, error)) error {
	result, err := run(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.TransitionResponse{
		Success:    true,
		Order:      orderFromDomain(result.Order),
		NoOp:       result.NoOp,
		SyncFailed: result.SyncFailed,
	})
}

func (s *Server) localDay(d openapi_types.Date) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, s.location)
}

func uuidFromAPI(id openapi_types.UUID) kernel.UUID {
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}
	}
	return parsed
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
