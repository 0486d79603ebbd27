package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FindDuplicateOrdersQueryHandler resolves the window from the order's store and reads the
// matching orders newest first.
type FindDuplicateOrdersQueryHandler struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewFindDuplicateOrdersQueryHandler(db *gorm.DB, clock ports.Clock) FindDuplicateOrdersQueryHandler {
	return FindDuplicateOrdersQueryHandler{db: db, clock: clock}
}

func (h FindDuplicateOrdersQueryHandler) Handle(
	ctx context.Context,
	query FindDuplicateOrdersQuery,
) (FindDuplicateOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return FindDuplicateOrdersQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)

	var target struct {
		OrganizationID      uuid.UUID
		DeliveryPhone       string
		DuplicateWindowDays *int
	}
	err := db.Raw(`
		SELECT
			o.organization_id,
			o.delivery_phone,
			s.duplicate_window_days
		FROM orders o
		LEFT JOIN stores s ON s.id = o.store_id
		WHERE o.id = ?
	`, query.OrderID().Bytes()).Scan(&target).Error
	if err != nil {
		return FindDuplicateOrdersQueryResponse{}, err
	}
	if target.DeliveryPhone == "" {
		return FindDuplicateOrdersQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if target.OrganizationID != query.OrganizationID().Bytes() {
		return FindDuplicateOrdersQueryResponse{}, errs.ErrForbidden
	}

	windowDays := store.DefaultDuplicateWindowDays
	if target.DuplicateWindowDays != nil && *target.DuplicateWindowDays > 0 {
		windowDays = *target.DuplicateWindowDays
	}
	since := h.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	sql := db.Table("orders").
		Select("id, order_number, status, total, delivery_full_name, created_at").
		Where("organization_id = ? AND delivery_phone = ? AND created_at >= ? AND id <> ?",
			target.OrganizationID, target.DeliveryPhone, since, query.OrderID().Bytes())
	if len(query.statuses) > 0 {
		names := make([]string, 0, len(query.statuses))
		for _, s := range query.statuses {
			names = append(names, s.String())
		}
		sql = sql.Where("status = ANY(?)", pq.Array(names))
	}

	rows, err := sql.Order("created_at DESC").Rows()
	if err != nil {
		return FindDuplicateOrdersQueryResponse{}, err
	}
	defer rows.Close()

	orders := make([]DuplicateOrderView, 0)
	for rows.Next() {
		var (
			id       uuid.UUID
			view     DuplicateOrderView
			total    decimal.Decimal
			fullName string
		)
		if err = rows.Scan(&id, &view.OrderNumber, &view.Status, &total, &fullName, &view.CreatedAt); err != nil {
			return FindDuplicateOrdersQueryResponse{}, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return FindDuplicateOrdersQueryResponse{}, idErr
		}
		view.ID = orderID
		view.Total = total
		view.FullName = fullName
		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return FindDuplicateOrdersQueryResponse{}, err
	}

	return FindDuplicateOrdersQueryResponse{
		Phone:      target.DeliveryPhone,
		WindowDays: windowDays,
		Orders:     orders,
	}, nil
}
