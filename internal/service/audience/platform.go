package audience

import (
	"context"

	"github.com/ignite/meta-audience-relay/internal/meta"
)

// Platform is the advertising platform contract the service drives.
// *meta.Client satisfies it.
type Platform interface {
	// CreateCustomAudience creates an empty customer-file audience and returns its id.
	CreateCustomAudience(ctx context.Context, name, description string) (string, error)

	// AddUsers uploads one batch of hashed rows to an existing audience.
	AddUsers(ctx context.Context, audienceID string, payload meta.UsersPayload) (*meta.AddUsersResponse, error)
}
