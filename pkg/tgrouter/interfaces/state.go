package interfaces

import (
	"context"
)

// State tells the router which conversation a user is in. An empty kind means none.
type State interface {
	Kind(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}
