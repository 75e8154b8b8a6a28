package storage

import (
	"context"
	"errors"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
)

// CartStore mirrors cart snapshots to durable storage and restores them on
// demand. Consumers define this interface, not the Redis implementation.
type CartStore interface {
	Load(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, customerID string, cart *domain.Cart) error
	Delete(ctx context.Context, customerID string) error
}

var ErrNotFound = errors.New("cart not found")
