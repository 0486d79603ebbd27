package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrAlreadyCancelled is returned by Cancel on a cancelled order. Callers report it as a
	// successful no-op.
	ErrAlreadyCancelled = errors.New("order is already cancelled")

	// ErrAlreadyLinked is returned when the order already carries a fulfillment id.
	ErrAlreadyLinked = errors.New("order is already linked to the fulfillment system")
)

// Order is the aggregate root of the purchase order lifecycle.
//
// Order follows these invariants:
//   - Status changes only through the transition table in status.go
//   - At most one of holdFromStatus and cancelledFromStatus is set
//   - The fulfillment id is set at most once and never cleared
//   - Total equals subtotal + shippingCost + the sum of upsell amounts at the last recompute
type Order struct {
	id             kernel.UUID
	organizationID kernel.UUID
	storeID        kernel.UUID
	customerID     kernel.UUID

	orderNumber string
	offerCode   string
	lineItem    LineItem
	upsells     []Upsell

	subtotal     decimal.Decimal
	shippingCost decimal.Decimal
	total        decimal.Decimal

	delivery Delivery

	status              Status
	holdFromStatus      *Status
	cancelledFromStatus *Status
	cancelledNote       string
	cancellerName       string
	orderNote           string

	helpshipOrderID     string
	queueExpiresAt      *time.Time
	scheduledDate       *time.Time
	fromPartialID       *kernel.UUID
	promotedFromTesting bool

	createdAt time.Time
	updatedAt time.Time

	domainEvents []StatusChanged

	isConstructed bool
}

// StatusChanged is recorded on creation (From is Unknown) and by every transition that moves
// the order to a different status.
type StatusChanged struct {
	OrderID        kernel.UUID
	OrganizationID kernel.UUID
	OrderNumber    string
	From           Status
	To             Status
	At             time.Time
}

// NewOrderParams collects the intake data for NewOrder.
type NewOrderParams struct {
	ID             kernel.UUID
	OrganizationID kernel.UUID
	StoreID        kernel.UUID
	CustomerID     kernel.UUID
	OrderNumber    string
	OfferCode      string
	LineItem       LineItem
	Upsells        []Upsell
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Delivery       Delivery
	// TestMode places the order in Testing.
	TestMode bool
	// OfferWindow greater than zero places the order in Queue until now + OfferWindow.
	OfferWindow   time.Duration
	FromPartialID *kernel.UUID
	Now           time.Time
}

// NewOrder creates an order at intake. The initial status is Testing in test mode,
// Queue when the store offers a post-purchase window and Pending otherwise.
// Only presale upsells can be attached at intake.
func NewOrder(p NewOrderParams) (*Order, error) {
	o := &Order{
		orderNumber:   p.OrderNumber,
		offerCode:     p.OfferCode,
		lineItem:      p.LineItem,
		delivery:      p.Delivery,
		fromPartialID: p.FromPartialID,
		createdAt:     p.Now,
		updatedAt:     p.Now,
		isConstructed: true,
	}

	var errList []error
	for _, id := range []kernel.UUID{p.ID, p.OrganizationID, p.StoreID, p.CustomerID} {
		errList = append(errList, id.Validate())
	}
	if p.OrderNumber == "" {
		errList = append(errList, errs.NewValueIsRequiredError("orderNumber"))
	}
	errList = append(errList, p.LineItem.Validate(), p.Delivery.Validate())
	for _, u := range p.Upsells {
		if u.Type != Presale {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("upsells",
				fmt.Errorf("%s upsell %q cannot be added at checkout", u.Type, u.Title)))
			continue
		}
		errList = append(errList, u.Validate())
	}
	subtotal, err := kernel.NewAmount("subtotal", p.Subtotal)
	errList = append(errList, err)
	shipping, err := kernel.NewAmount("shippingCost", p.ShippingCost)
	errList = append(errList, err)
	if p.OfferWindow < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("offerWindow",
			fmt.Errorf("%s is negative", p.OfferWindow)))
	}
	if err = errors.Join(errList...); err != nil {
		return nil, err
	}

	o.id, o.organizationID, o.storeID, o.customerID = p.ID, p.OrganizationID, p.StoreID, p.CustomerID
	o.subtotal, o.shippingCost = subtotal, shipping
	o.upsells = slices.Clone(p.Upsells)
	o.recomputeTotal()

	switch {
	case p.TestMode:
		o.status = Testing
	case p.OfferWindow > 0:
		o.status = Queue
		expiresAt := p.Now.Add(p.OfferWindow)
		o.queueExpiresAt = &expiresAt
	default:
		o.status = Pending
	}
	o.domainEvents = append(o.domainEvents, StatusChanged{
		OrderID:        o.id,
		OrganizationID: o.organizationID,
		OrderNumber:    o.orderNumber,
		From:           Unknown,
		To:             o.status,
		At:             p.Now,
	})

	return o, nil
}

// Snapshot is the flat representation of an order used by persistence and presentation.
type Snapshot struct {
	ID                  kernel.UUID
	OrganizationID      kernel.UUID
	StoreID             kernel.UUID
	CustomerID          kernel.UUID
	OrderNumber         string
	OfferCode           string
	LineItem            LineItem
	Upsells             []Upsell
	Subtotal            decimal.Decimal
	ShippingCost        decimal.Decimal
	Total               decimal.Decimal
	Delivery            Delivery
	Status              Status
	HoldFromStatus      *Status
	CancelledFromStatus *Status
	CancelledNote       string
	CancellerName       string
	OrderNote           string
	HelpshipOrderID     string
	QueueExpiresAt      *time.Time
	ScheduledDate       *time.Time
	FromPartialID       *kernel.UUID
	PromotedFromTesting bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RestoreOrder rebuilds an order read back from storage. The stored total is kept as is.
func RestoreOrder(s Snapshot) (*Order, error) {
	var errList []error
	for _, id := range []kernel.UUID{s.ID, s.OrganizationID, s.StoreID, s.CustomerID} {
		errList = append(errList, id.Validate())
	}
	errList = append(errList, s.Status.Validate())
	if s.HoldFromStatus != nil {
		errList = append(errList, s.HoldFromStatus.Validate())
	}
	if s.CancelledFromStatus != nil {
		errList = append(errList, s.CancelledFromStatus.Validate())
	}
	if s.HoldFromStatus != nil && s.CancelledFromStatus != nil {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("order",
			errors.New("holdFromStatus and cancelledFromStatus are both set")))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Order{
		id:                  s.ID,
		organizationID:      s.OrganizationID,
		storeID:             s.StoreID,
		customerID:          s.CustomerID,
		orderNumber:         s.OrderNumber,
		offerCode:           s.OfferCode,
		lineItem:            s.LineItem,
		upsells:             slices.Clone(s.Upsells),
		subtotal:            s.Subtotal,
		shippingCost:        s.ShippingCost,
		total:               s.Total,
		delivery:            s.Delivery,
		status:              s.Status,
		holdFromStatus:      s.HoldFromStatus,
		cancelledFromStatus: s.CancelledFromStatus,
		cancelledNote:       s.CancelledNote,
		cancellerName:       s.CancellerName,
		orderNote:           s.OrderNote,
		helpshipOrderID:     s.HelpshipOrderID,
		queueExpiresAt:      s.QueueExpiresAt,
		scheduledDate:       s.ScheduledDate,
		fromPartialID:       s.FromPartialID,
		promotedFromTesting: s.PromotedFromTesting,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
		isConstructed:       true,
	}, nil
}

// Snapshot returns a copy of the order state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                  o.id,
		OrganizationID:      o.organizationID,
		StoreID:             o.storeID,
		CustomerID:          o.customerID,
		OrderNumber:         o.orderNumber,
		OfferCode:           o.offerCode,
		LineItem:            o.lineItem,
		Upsells:             slices.Clone(o.upsells),
		Subtotal:            o.subtotal,
		ShippingCost:        o.shippingCost,
		Total:               o.total,
		Delivery:            o.delivery,
		Status:              o.status,
		HoldFromStatus:      o.holdFromStatus,
		CancelledFromStatus: o.cancelledFromStatus,
		CancelledNote:       o.cancelledNote,
		CancellerName:       o.cancellerName,
		OrderNote:           o.orderNote,
		HelpshipOrderID:     o.helpshipOrderID,
		QueueExpiresAt:      o.queueExpiresAt,
		ScheduledDate:       o.scheduledDate,
		FromPartialID:       o.fromPartialID,
		PromotedFromTesting: o.promotedFromTesting,
		CreatedAt:           o.createdAt,
		UpdatedAt:           o.updatedAt,
	}
}

// Validate ensures the Order instance was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) OrganizationID() kernel.UUID { return o.organizationID }
func (o *Order) StoreID() kernel.UUID { return o.storeID }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) OrderNumber() string { return o.orderNumber }
func (o *Order) OfferCode() string { return o.offerCode }
func (o *Order) LineItem() LineItem { return o.lineItem }
func (o *Order) Upsells() []Upsell { return slices.Clone(o.upsells) }
func (o *Order) Subtotal() decimal.Decimal { return o.subtotal }
func (o *Order) ShippingCost() decimal.Decimal { return o.shippingCost }
func (o *Order) Total() decimal.Decimal { return o.total }
func (o *Order) Delivery() Delivery { return o.delivery }
func (o *Order) Status() Status { return o.status }
func (o *Order) HoldFromStatus() *Status { return o.holdFromStatus }
func (o *Order) CancelledFromStatus() *Status { return o.cancelledFromStatus }
func (o *Order) CancelledNote() string { return o.cancelledNote }
func (o *Order) CancellerName() string { return o.cancellerName }
func (o *Order) OrderNote() string { return o.orderNote }
func (o *Order) HelpshipOrderID() string { return o.helpshipOrderID }
func (o *Order) QueueExpiresAt() *time.Time { return o.queueExpiresAt }
func (o *Order) ScheduledDate() *time.Time { return o.scheduledDate }
func (o *Order) FromPartialID() *kernel.UUID { return o.fromPartialID }
func (o *Order) PromotedFromTesting() bool { return o.promotedFromTesting }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// IsLinked reports whether the order has been created in the fulfillment system.
func (o *Order) IsLinked() bool {
	return o.helpshipOrderID != ""
}

// IsOfferExpired reports whether the post-purchase window is over at now.
func (o *Order) IsOfferExpired(now time.Time) bool {
	return o.queueExpiresAt != nil && now.After(*o.queueExpiresAt)
}

// Promote moves a test order into the live flow.
func (o *Order) Promote(now time.Time) error {
	if err := o.transition("promoted", Pending, now, Testing); err != nil {
		return err
	}
	o.promotedFromTesting = true
	return nil
}

// Finalize closes the post-purchase window. It returns false with no error when the
// order has already left the queue. Without force an expired window is rejected with
// errs.ErrOfferExpired; the expiry sweeper finalizes with force.
func (o *Order) Finalize(now time.Time, force bool) (bool, error) {
	if o.status != Queue {
		return false, nil
	}
	if !force && o.IsOfferExpired(now) {
		return false, fmt.Errorf("%w: order %s expired at %s", errs.ErrOfferExpired,
			o.orderNumber, o.queueExpiresAt.Format(time.RFC3339))
	}
	if err := o.transition("finalized", Pending, now, Queue); err != nil {
		return false, err
	}
	return true, nil
}

// AttachPostsaleUpsell appends an upsell accepted during the post-purchase window and
// recomputes the total. The order stays in Queue; Finalize follows.
func (o *Order) AttachPostsaleUpsell(u Upsell, now time.Time) error {
	if err := o.check("given an upsell", Queue); err != nil {
		return err
	}
	if o.IsOfferExpired(now) {
		return fmt.Errorf("%w: order %s expired at %s", errs.ErrOfferExpired,
			o.orderNumber, o.queueExpiresAt.Format(time.RFC3339))
	}
	if u.Type != Postsale {
		return errs.NewValueIsInvalidErrorWithCause("upsell type", fmt.Errorf("%s is not postsale", u.Type))
	}
	if err := u.Validate(); err != nil {
		return err
	}

	o.upsells = append(o.upsells, u)
	o.recomputeTotal()
	o.updatedAt = now
	return nil
}

// Confirm marks a pending or scheduled order as confirmed, applying operator corrections
// to the delivery details first.
func (o *Order) Confirm(patch *DeliveryPatch, now time.Time) error {
	if err := o.check("confirmed", Pending, Scheduled); err != nil {
		return err
	}
	delivery, err := patch.Apply(o.delivery)
	if err != nil {
		return err
	}
	if err = o.transition("confirmed", Confirmed, now, Pending, Scheduled); err != nil {
		return err
	}
	o.delivery = delivery
	return nil
}

// ConfirmScheduled is the automatic confirmation of a scheduled order on its date.
func (o *Order) ConfirmScheduled(now time.Time) error {
	return o.transition("confirmed on schedule", Confirmed, now, Scheduled)
}

// Schedule defers confirmation of a pending order to date. The date must be after today.
func (o *Order) Schedule(date, now time.Time) error {
	if err := o.check("scheduled", Pending); err != nil {
		return err
	}
	day := truncateDay(date)
	if !day.After(truncateDay(now)) {
		return errs.NewValueIsInvalidErrorWithCause("scheduledDate",
			fmt.Errorf("%s is not after %s", day.Format(time.DateOnly), now.Format(time.DateOnly)))
	}
	if err := o.transition("scheduled", Scheduled, now, Pending); err != nil {
		return err
	}
	o.scheduledDate = &day
	return nil
}

// CheckHold verifies that a hold can be attempted: the order must be pending and linked
// to the fulfillment system. It does not mutate the order.
func (o *Order) CheckHold() error {
	if err := o.check("held", Pending); err != nil {
		return err
	}
	if !o.IsLinked() {
		return fmt.Errorf("%w: order %s is not linked to the fulfillment system", errs.ErrSyncUnconfirmed, o.orderNumber)
	}
	return nil
}

// Hold records a hold that the fulfillment system has already confirmed.
func (o *Order) Hold(note string, now time.Time) error {
	if err := o.CheckHold(); err != nil {
		return err
	}
	from := o.status
	if err := o.transition("held", Hold, now, Pending); err != nil {
		return err
	}
	o.holdFromStatus = &from
	o.cancelledFromStatus = nil
	o.orderNote = note
	return nil
}

// Unhold returns a held order to the status it was held from, pending when unknown,
// and clears the hold note.
func (o *Order) Unhold(now time.Time) error {
	if err := o.check("unheld", Hold); err != nil {
		return err
	}
	target := Pending
	if o.holdFromStatus != nil {
		target = *o.holdFromStatus
	}
	if err := o.transition("unheld", target, now, Hold); err != nil {
		return err
	}
	o.holdFromStatus = nil
	o.orderNote = ""
	return nil
}

// Cancel archives the order and remembers the status to restore on Uncancel.
// Any hold bookkeeping is dropped. A second Cancel returns ErrAlreadyCancelled.
func (o *Order) Cancel(note, cancellerName string, now time.Time) error {
	if o.status == Cancelled {
		return ErrAlreadyCancelled
	}
	from := o.status
	if err := o.transition("cancelled", Cancelled, now, cancellableStatuses()...); err != nil {
		return err
	}
	o.cancelledFromStatus = &from
	o.holdFromStatus = nil
	o.cancelledNote = note
	o.cancellerName = cancellerName
	return nil
}

// Uncancel restores the status the order was cancelled from, pending when unknown.
func (o *Order) Uncancel(now time.Time) error {
	if err := o.check("uncancelled", Cancelled); err != nil {
		return err
	}
	target := Pending
	if o.cancelledFromStatus != nil {
		target = *o.cancelledFromStatus
	}
	if err := o.transition("uncancelled", target, now, Cancelled); err != nil {
		return err
	}
	o.cancelledFromStatus = nil
	o.cancelledNote = ""
	o.cancellerName = ""
	return nil
}

// CheckResync verifies that the order can be created again in the fulfillment system.
func (o *Order) CheckResync() error {
	if o.IsLinked() {
		return fmt.Errorf("%w: %s", ErrAlreadyLinked, o.helpshipOrderID)
	}
	return o.check("resynced", SyncError, Pending)
}

// MarkSynced links the order to its fulfillment record. A sync_error order returns to pending.
func (o *Order) MarkSynced(helpshipOrderID string, now time.Time) error {
	if helpshipOrderID == "" {
		return errs.NewValueIsRequiredError("helpshipOrderId")
	}
	if o.IsLinked() {
		return fmt.Errorf("%w: %s", ErrAlreadyLinked, o.helpshipOrderID)
	}
	if o.status == SyncError {
		if err := o.transition("resynced", Pending, now, SyncError); err != nil {
			return err
		}
	}
	o.helpshipOrderID = helpshipOrderID
	o.updatedAt = now
	return nil
}

// MarkSyncError records a failed external create on a pending order.
func (o *Order) MarkSyncError(now time.Time) error {
	if o.IsLinked() {
		return fmt.Errorf("%w: %s", ErrAlreadyLinked, o.helpshipOrderID)
	}
	if o.status == SyncError {
		return nil
	}
	return o.transition("marked as sync error", SyncError, now, Pending)
}

func (o *Order) check(action string, sources ...Status) error {
	if !slices.Contains(sources, o.status) {
		return errs.NewInvalidTransitionError(action, o.status.String(), statusNames(sources)...)
	}
	return nil
}

func (o *Order) transition(action string, target Status, now time.Time, sources ...Status) error {
	if err := o.check(action, sources...); err != nil {
		return err
	}
	if !o.status.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(action+" to "+target.String(), o.status.String())
	}
	if o.status != target {
		o.domainEvents = append(o.domainEvents, StatusChanged{
			OrderID:        o.id,
			OrganizationID: o.organizationID,
			OrderNumber:    o.orderNumber,
			From:           o.status,
			To:             target,
			At:             now,
		})
	}
	o.status = target
	o.updatedAt = now
	return nil
}

// DomainEvents returns the status changes recorded since the last ClearDomainEvents.
func (o *Order) DomainEvents() []StatusChanged {
	return slices.Clone(o.domainEvents)
}

func (o *Order) ClearDomainEvents() {
	o.domainEvents = nil
}

func (o *Order) recomputeTotal() {
	total := o.subtotal.Add(o.shippingCost)
	for _, u := range o.upsells {
		total = total.Add(u.Amount())
	}
	o.total = total.Round(kernel.MoneyScale)
}

func cancellableStatuses() []Status {
	return slices.DeleteFunc(AllStatuses(), func(s Status) bool { return s == Cancelled })
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
