package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrAttachPostsaleUpsellCommandIsNotConstructed = errors.New(
	"AttachPostsaleUpsellCommand must be created via NewAttachPostsaleUpsellCommand constructor",
)

// AttachPostsaleUpsellCommand adds an accepted post-purchase offer to a queued order and
// finalizes it.
type AttachPostsaleUpsellCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	upsellID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAttachPostsaleUpsellCommand(orderID, organizationID, upsellID kernel.UUID) (AttachPostsaleUpsellCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return AttachPostsaleUpsellCommand{}, err
	}
	if err = upsellID.Validate(); err != nil {
		return AttachPostsaleUpsellCommand{}, err
	}

	return AttachPostsaleUpsellCommand{
		orderTarget: target,
		upsellID:    upsellID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c AttachPostsaleUpsellCommand) Validate() error {
	return c.guard.Validate(ErrAttachPostsaleUpsellCommandIsNotConstructed)
}

func (c AttachPostsaleUpsellCommand) UpsellID() kernel.UUID {
	return c.upsellID
}
