package commands_test

import (
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCancelOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.gateway.On("Cancel", mock.Anything, "HS-1001", "Client refused").Return(nil).Once()

	cmd, err := commands.NewCancelOrderCommand(o.ID(), organizationID, "Client refused", "Maria")
	require.NoError(t, err)

	result, err := commands.NewCancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Equal(t, order.Cancelled, result.Order.Status())
	require.NotNil(t, result.Order.CancelledFromStatus())
	assert.Equal(t, order.Pending, *result.Order.CancelledFromStatus())
	assert.Equal(t, "Maria", result.Order.CancellerName())
	assert.Len(t, f.dispatcher.names, 1)
	assert.Empty(t, f.dispatcher.errors)
}

func TestCancelOrderCommandHandler_Handle_AlreadyCancelledIsNoOp(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Cancelled, linked("HS-1001"), func(s *order.Snapshot) {
		from := order.Confirmed
		s.CancelledFromStatus = &from
		s.CancelledNote = "first"
	})

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewCancelOrderCommand(o.ID(), organizationID, "second", "")
	require.NoError(t, err)

	result, err := commands.NewCancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Equal(t, "first", result.Order.CancelledNote())
	assert.Equal(t, order.Confirmed, *result.Order.CancelledFromStatus())
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Empty(t, f.dispatcher.names)
}

func TestCancelOrderCommandHandler_Handle_OtherOrganization(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	o := restoreOrder(t, kernel.NewUUID(), order.Pending)

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewCancelOrderCommand(o.ID(), kernel.NewUUID(), "", "")
	require.NoError(t, err)

	_, err = commands.NewCancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, order.Pending, o.Status())
}

func TestCancelOrderCommandHandler_Handle_UnlinkedOrderSkipsFulfillment(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Queue)

	f.expectTx(1)
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()

	cmd, err := commands.NewCancelOrderCommand(o.ID(), organizationID, "", "")
	require.NoError(t, err)

	result, err := commands.NewCancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, result.Order.Status())
	assert.Empty(t, f.dispatcher.names)
}

func TestUncancelOrderCommandHandler_Handle_RestoresHoldAndHoldsRemotely(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Cancelled, linked("HS-1001"), func(s *order.Snapshot) {
		from := order.Hold
		s.CancelledFromStatus = &from
		s.CancelledNote = "by mistake"
		s.OrderNote = "call after 18"
	})

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	mock.InOrder(
		f.gateway.On("Uncancel", mock.Anything, "HS-1001").Return(nil).Once(),
		f.gateway.On("SetHold", mock.Anything, "HS-1001", "call after 18").Return(nil).Once(),
	)

	cmd, err := commands.NewUncancelOrderCommand(o.ID(), organizationID)
	require.NoError(t, err)

	result, err := commands.NewUncancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Hold, result.Order.Status())
	assert.Empty(t, result.Order.CancelledNote())
	assert.Nil(t, result.Order.CancelledFromStatus())
}

func TestUncancelOrderCommandHandler_Handle_NotCancelled(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending)

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewUncancelOrderCommand(o.ID(), organizationID)
	require.NoError(t, err)

	_, err = commands.NewUncancelOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestHoldOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.uow.On("Begin", mock.Anything).Return(nil).Twice()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.expectGateway()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	mock.InOrder(
		f.gateway.On("SetHold", mock.Anything, "HS-1001", "call after 18").Return(nil).Once(),
		f.gateway.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemoteOnHold, nil).Once(),
	)

	cmd, err := commands.NewHoldOrderCommand(o.ID(), organizationID, "call after 18")
	require.NoError(t, err)

	result, err := commands.NewHoldOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock, zap.NewNop()).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Hold, result.Order.Status())
	assert.Empty(t, result.Order.OrderNote())
	require.NotNil(t, result.Order.HoldFromStatus())
	assert.Equal(t, order.Pending, *result.Order.HoldFromStatus())
}

func TestHoldOrderCommandHandler_Handle_RemoteDidNotConfirm(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(gw *MockGateway)
		verify func(t *testing.T, gw *MockGateway)
	}{
		{
			name: "hold request failed",
			setup: func(gw *MockGateway) {
				gw.On("SetHold", mock.Anything, "HS-1001", "").Return(errors.New("503 service unavailable")).Once()
			},
			verify: func(t *testing.T, gw *MockGateway) {
				gw.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
			},
		},
		{
			name: "remote still pending",
			setup: func(gw *MockGateway) {
				gw.On("SetHold", mock.Anything, "HS-1001", "").Return(nil).Once()
				gw.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemotePending, nil).Once()
			},
		},
		{
			name: "status read failed",
			setup: func(gw *MockGateway) {
				gw.On("SetHold", mock.Anything, "HS-1001", "").Return(nil).Once()
				gw.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemoteStatus(""), errors.New("timeout")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture(t)
			organizationID := kernel.NewUUID()
			o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

			f.uow.On("Begin", mock.Anything).Return(nil).Once()
			f.expectGateway()
			f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
			tt.setup(f.gateway)

			cmd, err := commands.NewHoldOrderCommand(o.ID(), organizationID, "")
			require.NoError(t, err)

			_, err = commands.NewHoldOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock, zap.NewNop()).Handle(ctx, cmd)

			require.ErrorIs(t, err, errs.ErrSyncUnconfirmed)
			assert.Equal(t, order.Pending, o.Status())
			f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			f.uow.AssertNotCalled(t, "Commit", mock.Anything)
			if tt.verify != nil {
				tt.verify(t, f.gateway)
			}
		})
	}
}

func TestHoldOrderCommandHandler_Handle_UnlinkedOrder(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending)

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewHoldOrderCommand(o.ID(), organizationID, "")
	require.NoError(t, err)

	_, err = commands.NewHoldOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock, zap.NewNop()).Handle(ctx, cmd)

	assert.ErrorIs(t, err, errs.ErrSyncUnconfirmed)
	f.gateways.AssertNotCalled(t, "ForOrganization", mock.Anything, mock.Anything)
}

func TestHoldOrderCommandHandler_Handle_WrongStatus(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Confirmed, linked("HS-1001"))

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewHoldOrderCommand(o.ID(), organizationID, "")
	require.NoError(t, err)

	_, err = commands.NewHoldOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock, zap.NewNop()).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.EqualError(t, err, "invalid status transition: order has status confirmed, only pending can be held")
}

func TestHoldOrderCommandHandler_Handle_LocalCommitFailureReleasesRemoteHold(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))
	// Another operator confirmed the order between the remote hold and the local commit.
	locked := restoreOrder(t, organizationID, order.Confirmed, linked("HS-1001"), func(s *order.Snapshot) {
		s.ID = o.ID()
	})

	f.uow.On("Begin", mock.Anything).Return(nil).Twice()
	f.expectGateway()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(locked, nil).Once()
	f.gateway.On("SetHold", mock.Anything, "HS-1001", "").Return(nil).Once()
	f.gateway.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemoteOnHold, nil).Once()
	f.gateway.On("SetUnhold", mock.Anything, "HS-1001").Return(nil).Once()

	cmd, err := commands.NewHoldOrderCommand(o.ID(), organizationID, "")
	require.NoError(t, err)

	_, err = commands.NewHoldOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock, zap.NewNop()).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.Len(t, f.dispatcher.names, 1)
}

func TestUnholdOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Hold, linked("HS-1001"), func(s *order.Snapshot) {
		from := order.Pending
		s.HoldFromStatus = &from
		s.OrderNote = "call after 18"
	})

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.gateway.On("SetUnhold", mock.Anything, "HS-1001").Return(nil).Once()

	cmd, err := commands.NewUnholdOrderCommand(o.ID(), organizationID)
	require.NoError(t, err)

	result, err := commands.NewUnholdOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Pending, result.Order.Status())
	assert.Nil(t, result.Order.HoldFromStatus())
	assert.Empty(t, result.Order.OrderNote())
}

func TestConfirmOrderCommandHandler_Handle_PushesPatchAndReleasesHold(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	scheduledFor := testNow.AddDate(0, 0, 2)
	o := restoreOrder(t, organizationID, order.Scheduled, linked("HS-1001"), func(s *order.Snapshot) {
		s.ScheduledDate = &scheduledFor
	})

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	mock.InOrder(
		f.gateway.On("UpdateOrder", mock.Anything, "HS-1001", o).Return(nil).Once(),
		f.gateway.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemoteOnHold, nil).Once(),
		f.gateway.On("SetUnhold", mock.Anything, "HS-1001").Return(nil).Once(),
	)

	city := "Turda"
	cmd, err := commands.NewConfirmOrderCommand(o.ID(), organizationID, &order.DeliveryPatch{City: &city})
	require.NoError(t, err)

	result, err := commands.NewConfirmOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, result.Order.Status())
	assert.Equal(t, "Turda", result.Order.Delivery().City)
	assert.Empty(t, f.dispatcher.errors)
}

func TestConfirmOrderCommandHandler_Handle_WithoutPatchSkipsUpdate(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.gateway.On("GetStatus", mock.Anything, "HS-1001").Return(ports.RemotePending, nil).Once()

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), organizationID, nil)
	require.NoError(t, err)

	result, err := commands.NewConfirmOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, result.Order.Status())
	f.gateway.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "SetUnhold", mock.Anything, mock.Anything)
}

func TestScheduleOrderCommandHandler_Handle_HoldsRemotely(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.expectTx(1)
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.gateway.On("SetHold", mock.Anything, "HS-1001", "scheduled 2026-03-12").Return(nil).Once()

	cmd, err := commands.NewScheduleOrderCommand(o.ID(), organizationID, testNow.AddDate(0, 0, 2))
	require.NoError(t, err)

	result, err := commands.NewScheduleOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Scheduled, result.Order.Status())
	require.NotNil(t, result.Order.ScheduledDate())
	assert.Equal(t, time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC), *result.Order.ScheduledDate())
}

func TestScheduleOrderCommandHandler_Handle_DateNotInFuture(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewScheduleOrderCommand(o.ID(), organizationID, testNow)
	require.NoError(t, err)

	_, err = commands.NewScheduleOrderCommandHandler(f.orderUoWFactory(), f.sync, f.clock).Handle(ctx, cmd)

	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Equal(t, order.Pending, o.Status())
}

func TestResyncOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.SyncError)

	f.uow.On("Begin", mock.Anything).Return(nil).Twice()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.expectGateway()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Twice()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.gateway.On("CreateOrder", mock.Anything, o).Return("HS-2002", nil).Once()

	cmd, err := commands.NewResyncOrderCommand(o.ID(), organizationID)
	require.NoError(t, err)

	result, err := commands.NewResyncOrderCommandHandler(f.orderUoWFactory(), f.sync).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, result.SyncFailed)
	assert.Equal(t, order.Pending, result.Order.Status())
	assert.Equal(t, "HS-2002", result.Order.HelpshipOrderID())
}

func TestResyncOrderCommandHandler_Handle_AlreadyLinked(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	organizationID := kernel.NewUUID()
	o := restoreOrder(t, organizationID, order.Pending, linked("HS-1001"))

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewResyncOrderCommand(o.ID(), organizationID)
	require.NoError(t, err)

	_, err = commands.NewResyncOrderCommandHandler(f.orderUoWFactory(), f.sync).Handle(ctx, cmd)

	assert.ErrorIs(t, err, order.ErrAlreadyLinked)
	f.gateways.AssertNotCalled(t, "ForOrganization", mock.Anything, mock.Anything)
}
