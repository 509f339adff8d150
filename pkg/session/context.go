package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// ErrOwnerIDNotFound is returned when no owner id exists in the request context.
// It means the handler is mounted outside RequireSession.
var ErrOwnerIDNotFound = errors.New("owner_id not found in context")

// OwnerIDFromCtx extracts the session owner id from the request context.
func OwnerIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, ErrOwnerIDNotFound
	}
	return ownerID, nil
}

// WithOwnerID returns a new context carrying ownerID.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}
