package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sweepInstrumentationName = "orderflow/internal/core/application/usecases/commands"

// SweepError is the failure of one order inside a sweep.
type SweepError struct {
	OrderID string
	Error   string
}

// SweepSummary reports a sweep run. Failures of single orders never abort the batch.
type SweepSummary struct {
	Total   int
	Success int
	Failed  int
	Errors  []SweepError

	// Skipped is set when another replica holds the sweep lock.
	Skipped bool
}

// sweeper runs one batch: acquire the optional lock, load candidates, process each order
// in isolation and summarize. The fulfillment gateway of an organization is resolved once
// per batch.
type sweeper struct {
	name    string
	locker  ports.SweepLocker
	lockTTL time.Duration
	logger  *zap.Logger
	tracer  trace.Tracer

	processed        metric.Int64Counter
	processedEnabled bool
}

func newSweeper(name string, locker ports.SweepLocker, lockTTL time.Duration, logger *zap.Logger) sweeper {
	logger = logger.With(zap.String("component", "sweep"), zap.String("sweep", name))

	processed, err := otel.GetMeterProvider().Meter(sweepInstrumentationName).Int64Counter(
		"orders.sweep.processed",
		metric.WithDescription("Orders processed by lifecycle sweeps"),
	)
	if err != nil {
		logger.Warn("sweep: unable to register processed metric", zap.Error(err))
	}

	return sweeper{
		name:             name,
		locker:           locker,
		lockTTL:          lockTTL,
		logger:           logger,
		tracer:           otel.Tracer(sweepInstrumentationName),
		processed:        processed,
		processedEnabled: err == nil,
	}
}

func (s sweeper) run(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	load func(ctx context.Context) ([]*order.Order, error),
	process func(ctx context.Context, gateways ports.FulfillmentGatewayFactory, o *order.Order) error,
) (SweepSummary, error) {
	ctx, span := s.tracer.Start(ctx, "sweep."+s.name)
	defer span.End()

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, "sweep:"+s.name, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn("sweep lock unavailable, running without it", zap.Error(err))
		case !acquired:
			s.logger.Info("sweep already running elsewhere")
			span.SetAttributes(attribute.Bool("sweep.skipped", true))
			return SweepSummary{Skipped: true, Errors: []SweepError{}}, nil
		default:
			defer func() {
				if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
					s.logger.Warn("sweep lock release failed", zap.Error(releaseErr))
				}
			}()
		}
	}

	orders, err := load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return SweepSummary{}, err
	}

	batch := newBatchGateways(gateways)
	summary := SweepSummary{Total: len(orders), Errors: []SweepError{}}
	for _, o := range orders {
		if err = process(ctx, batch, o); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, SweepError{OrderID: o.ID().String(), Error: err.Error()})
			s.logger.Warn("sweep item failed", zap.String("orderId", o.ID().String()), zap.Error(err))
			s.count(ctx, "failed")
			continue
		}
		summary.Success++
		s.count(ctx, "success")
	}

	span.SetAttributes(
		attribute.Int("sweep.total", summary.Total),
		attribute.Int("sweep.success", summary.Success),
		attribute.Int("sweep.failed", summary.Failed),
	)
	if summary.Total > 0 {
		s.logger.Info("sweep finished",
			zap.Int("total", summary.Total), zap.Int("success", summary.Success), zap.Int("failed", summary.Failed))
	}

	return summary, nil
}

func (s sweeper) count(ctx context.Context, outcome string) {
	if !s.processedEnabled {
		return
	}
	s.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sweep", s.name),
		attribute.String("outcome", outcome),
	))
}

// batchGateways memoizes gateway resolution, including failures, for one batch.
type batchGateways struct {
	factory  ports.FulfillmentGatewayFactory
	resolved map[kernel.UUID]resolvedGateway
}

type resolvedGateway struct {
	gateway ports.FulfillmentGateway
	err     error
}

func newBatchGateways(factory ports.FulfillmentGatewayFactory) *batchGateways {
	return &batchGateways{
		factory:  factory,
		resolved: make(map[kernel.UUID]resolvedGateway),
	}
}

func (b *batchGateways) ForOrganization(ctx context.Context, organizationID kernel.UUID) (ports.FulfillmentGateway, error) {
	if r, ok := b.resolved[organizationID]; ok {
		return r.gateway, r.err
	}
	gw, err := b.factory.ForOrganization(ctx, organizationID)
	b.resolved[organizationID] = resolvedGateway{gateway: gw, err: err}
	return gw, err
}
