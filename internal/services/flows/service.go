package flows

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sitpractice/sit-api/internal/models"
)

type service struct {
	repo Repository
}

// NewService creates a new flow service
func NewService(repo Repository) FlowService {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateFlow(ctx context.Context, flow *models.Flow) error {
	if strings.TrimSpace(flow.Name) == "" {
		return fmt.Errorf("flow name is required")
	}
	if len(flow.Steps) == 0 {
		return fmt.Errorf("flow must have at least one step")
	}

	if err := s.repo.Create(ctx, flow); err != nil {
		return fmt.Errorf("creating flow: %w", err)
	}

	log.Printf("[DEBUG] Created flow %s (%s)", flow.ID, flow.Name)

	return nil
}

func (s *service) GetFlow(ctx context.Context, id string) (*models.Flow, error) {
	flow, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFlowNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting flow: %w", err)
	}
	return flow, nil
}

func (s *service) ListFlows(ctx context.Context, userID string) ([]*models.Flow, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetFlowsByIDs resolves flow ids in one batch query. Ids that no longer
// resolve are left out of the map rather than failing the whole lookup.
func (s *service) GetFlowsByIDs(ctx context.Context, ids []string) (map[string]*models.Flow, error) {
	result := make(map[string]*models.Flow, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	// Dedupe before hitting the database
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := s.repo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("batch flow lookup: %w", err)
	}

	for _, flow := range found {
		result[flow.ID] = flow
	}

	return result, nil
}
