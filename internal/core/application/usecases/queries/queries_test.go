package queries_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery(t *testing.T) {
	orderID, organizationID := kernel.NewUUID(), kernel.NewUUID()

	query, err := queries.NewGetOrderQuery(orderID, organizationID)

	require.NoError(t, err)
	assert.NoError(t, query.Validate())
	assert.Equal(t, orderID, query.OrderID())
	assert.Equal(t, organizationID, query.OrganizationID())
}

func TestNewGetOrderQuery_RequiresIDs(t *testing.T) {
	_, err := queries.NewGetOrderQuery(kernel.UUID{}, kernel.NewUUID())

	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestGetOrderQuery_ZeroValue(t *testing.T) {
	var query queries.GetOrderQuery

	assert.ErrorIs(t, query.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
}

func TestNewFindDuplicateOrdersQuery(t *testing.T) {
	tests := []struct {
		name     string
		statuses []order.Status
		wantErr  bool
	}{
		{name: "no filter"},
		{name: "status filter", statuses: []order.Status{order.Pending, order.Confirmed}},
		{name: "unknown status", statuses: []order.Status{order.Unknown}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := queries.NewFindDuplicateOrdersQuery(kernel.NewUUID(), kernel.NewUUID(), tt.statuses...)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, query.Validate())
		})
	}
}

func TestFindDuplicateOrdersQuery_ZeroValue(t *testing.T) {
	var query queries.FindDuplicateOrdersQuery

	assert.ErrorIs(t, query.Validate(), queries.ErrFindDuplicateOrdersQueryIsNotConstructed)
}
