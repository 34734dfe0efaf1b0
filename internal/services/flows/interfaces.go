package flows

import (
	"context"

	"github.com/sitpractice/sit-api/internal/models"
)

// FlowService defines the interface for flow definition operations.
// Flows are stored and returned as opaque step sequences; step traversal
// runs on the client.
type FlowService interface {
	// CreateFlow stores a new flow definition for a user
	CreateFlow(ctx context.Context, flow *models.Flow) error

	// GetFlow retrieves a flow by id
	GetFlow(ctx context.Context, id string) (*models.Flow, error)

	// ListFlows retrieves all flows owned by a user
	ListFlows(ctx context.Context, userID string) ([]*models.Flow, error)

	// GetFlowsByIDs performs one batch lookup for the given ids.
	// Unresolvable ids are simply absent from the result.
	GetFlowsByIDs(ctx context.Context, ids []string) (map[string]*models.Flow, error)

	// EnsureDefaultFlow creates the built-in starter flow for a user who
	// has no flows yet. Returns the user's flows either way.
	EnsureDefaultFlow(ctx context.Context, userID string) ([]*models.Flow, error)
}

// Repository defines the interface for flow persistence
type Repository interface {
	Create(ctx context.Context, flow *models.Flow) error
	GetByID(ctx context.Context, id string) (*models.Flow, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Flow, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Flow, error)
}
