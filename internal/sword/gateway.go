package sword

import (
	"context"
	"fmt"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
)

// Gateway is the adapter's view of the router. Implementations report unknown
// ids as ErrNotFound, refused credentials as ErrUnauthorized and rejected
// content as *ValidationError; every other error is a transport failure.
type Gateway interface {
	Fetch(ctx context.Context, id string) (*jper.Notification, error)
	Validate(ctx context.Context, deposit *DepositRequest) error
	Create(ctx context.Context, deposit *DepositRequest) (id, location string, err error)
}

// JPERGateway is the Gateway backed by the router HTTP API.
type JPERGateway struct {
	client *jper.Client
}

// NewJPERGateway binds client to the caller's forwarded token.
func NewJPERGateway(client *jper.Client, auth Auth) *JPERGateway {
	return &JPERGateway{client: client.ForKey(auth.Token)}
}

// Fetch implements Gateway.
func (g *JPERGateway) Fetch(ctx context.Context, id string) (*jper.Notification, error) {
	n, err := g.client.GetNotification(ctx, id)
	if err != nil {
		return nil, normalize(err)
	}
	return n, nil
}

// Validate implements Gateway.
func (g *JPERGateway) Validate(ctx context.Context, deposit *DepositRequest) error {
	return normalize(g.client.Validate(ctx, deposit.jperDeposit()))
}

// Create implements Gateway.
func (g *JPERGateway) Create(ctx context.Context, deposit *DepositRequest) (string, string, error) {
	result, err := g.client.CreateNotification(ctx, deposit.jperDeposit())
	if err != nil {
		return "", "", normalize(err)
	}
	return result.ID, result.Location, nil
}

// normalize maps router client errors onto the adapter taxonomy and keeps the
// original in the chain. Not found is recognised by error category, which the
// client sets on every 404.
func normalize(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *jper.ValidationError
	switch {
	case errors.IsNotFound(err):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, jper.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.As(err, &validationErr):
		return &ValidationError{Message: validationErr.Message}
	default:
		return err
	}
}
