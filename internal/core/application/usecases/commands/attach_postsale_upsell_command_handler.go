package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// AttachPostsaleUpsellCommandHandler appends the catalog upsell, recomputes the total and
// finalizes the order in one transaction.
type AttachPostsaleUpsellCommandHandler struct {
	finalizer FinalizeOrderCommandHandler
	catalog   ports.UpsellCatalog
}

func NewAttachPostsaleUpsellCommandHandler(
	finalizer FinalizeOrderCommandHandler,
	catalog ports.UpsellCatalog,
) AttachPostsaleUpsellCommandHandler {
	return AttachPostsaleUpsellCommandHandler{
		finalizer: finalizer,
		catalog:   catalog,
	}
}

func (h AttachPostsaleUpsellCommandHandler) Handle(ctx context.Context, cmd AttachPostsaleUpsellCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	organizationID := cmd.OrganizationID()
	attach := func(ctx context.Context, o *order.Order, now time.Time) error {
		offer, err := h.catalog.Get(ctx, o.StoreID(), cmd.UpsellID())
		if err != nil {
			return err
		}
		if !offer.Active {
			return errs.NewValueIsInvalidErrorWithCause("upsellId", fmt.Errorf("upsell %s is not active", offer.ID))
		}
		u, err := offer.ToUpsell()
		if err != nil {
			return err
		}
		return o.AttachPostsaleUpsell(u, now)
	}

	return h.finalizer.finalize(ctx, h.finalizer.sync.Gateways(), cmd.OrderID(), &organizationID, false, attach)
}
