package flows

import (
	"context"
	"fmt"
	"log"

	"github.com/sitpractice/sit-api/internal/models"
)

// Starter flow given to every user before they build their own
const (
	defaultFlowName        = "In the View?"
	defaultFlowDescription = "A simple check-in to see if you're resting in the View."
)

func defaultFlowSteps() models.FlowSteps {
	return models.FlowSteps{
		{
			"id":     1,
			"title":  "Check",
			"prompt": "Are you in the View?",
			"answers": []map[string]interface{}{
				{"label": "Yes", "destination": 2, "record_voice_note": false},
				{"label": "No", "destination": 3, "record_voice_note": false},
			},
		},
		{
			"id":     2,
			"title":  "Reflection",
			"prompt": "How are you relating to things right now?\n\nAre you holding things with compassion and openness? Can you sense the sacredness of this moment?",
			"answers": []map[string]interface{}{
				{"label": "Got it", "destination": "submit", "record_voice_note": false},
			},
		},
		{
			"id":     3,
			"title":  "Gate Opening",
			"prompt": "Try this: relax your body, soften your gaze, and let everything just be as it is.\n\nDid it work?",
			"answers": []map[string]interface{}{
				{"label": "It worked", "destination": 2, "record_voice_note": false},
				{"label": "Didn't work", "destination": 4, "record_voice_note": false},
			},
		},
		{
			"id":     4,
			"title":  "Voice Note",
			"prompt": "What's going on?\n\nCan you find the limiting beliefs, or would you like to do parts work?",
			"answers": []map[string]interface{}{
				{"label": "Save", "destination": "submit", "record_voice_note": true},
				{"label": "Skip", "destination": "submit", "record_voice_note": false},
			},
		},
	}
}

// EnsureDefaultFlow seeds the starter flow for users with no flows yet
func (s *service) EnsureDefaultFlow(ctx context.Context, userID string) ([]*models.Flow, error) {
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking existing flows: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	flow := &models.Flow{
		UserID:      userID,
		Name:        defaultFlowName,
		Description: defaultFlowDescription,
		Steps:       defaultFlowSteps(),
		Visibility:  models.FlowVisibilityPrivate,
	}

	if err := s.repo.Create(ctx, flow); err != nil {
		return nil, fmt.Errorf("seeding default flow: %w", err)
	}

	log.Printf("[DEBUG] Seeded default flow %s for user %s", flow.ID, userID)

	return []*models.Flow{flow}, nil
}
