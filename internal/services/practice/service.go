package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/flows"
	"github.com/sitpractice/sit-api/internal/services/records"
	apperrors "github.com/sitpractice/sit-api/pkg/errors"
)

// Kind selects which record variants a query returns
type Kind string

const (
	KindSits     Kind = "sits"
	KindCheckins Kind = "checkins"
	KindAll      Kind = "all"
)

const dateLayout = "2006-01-02"

// QueryParams are the caller-supplied parameters of one query.
// StartDate and EndDate are local calendar dates (YYYY-MM-DD) in
// Timezone, not UTC instants; either may be empty for an open bound.
type QueryParams struct {
	StartDate string
	EndDate   string
	Timezone  string
	Kind      Kind
}

// Record is one merged result row: exactly one of Sit or Checkin is set.
// LocalTime is the display timestamp rendered in the caller's timezone;
// the stored UTC instant is untouched.
type Record struct {
	Kind      models.RecordKind `json:"kind"`
	LocalTime time.Time         `json:"local_time"`
	Sit       *models.Sit       `json:"sit,omitempty"`
	Checkin   *models.Checkin   `json:"checkin,omitempty"`
}

// Result is the merged, hydrated view of a user's practice
type Result struct {
	Flows   map[string]*models.Flow `json:"flows"`
	Records []Record                `json:"records"`
	Count   int                     `json:"count"`
}

// Service is the practice query engine: a timezone-normalized, merged
// read over both record streams.
type Service interface {
	Query(ctx context.Context, userID string, params QueryParams) (*Result, error)
}

type service struct {
	repo  records.Repository
	flows flows.FlowService
}

// NewService creates a new practice query engine
func NewService(repo records.Repository, flowService flows.FlowService) Service {
	return &service{
		repo:  repo,
		flows: flowService,
	}
}

func (s *service) Query(ctx context.Context, userID string, params QueryParams) (*Result, error) {
	kind := params.Kind
	if kind == "" {
		kind = KindAll
	}
	if kind != KindSits && kind != KindCheckins && kind != KindAll {
		return nil, apperrors.InvalidArgument("kind", fmt.Sprintf("must be sits, checkins or all, got %q", params.Kind))
	}

	tzName := params.Timezone
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, apperrors.InvalidArgument("timezone", fmt.Sprintf("unknown timezone %q", tzName))
	}

	start, end, err := utcBounds(params.StartDate, params.EndDate, loc)
	if err != nil {
		return nil, err
	}

	var sits []*models.Sit
	var checkins []*models.Checkin

	if kind == KindSits || kind == KindAll {
		sits, err = s.repo.ListSitsInRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("querying sits: %w", err)
		}
	}
	if kind == KindCheckins || kind == KindAll {
		checkins, err = s.repo.ListCheckinsInRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("querying checkins: %w", err)
		}
	}

	merged := mergeDescending(sits, checkins, loc)

	flowMap, err := s.hydrateFlows(ctx, checkins)
	if err != nil {
		return nil, fmt.Errorf("hydrating flows: %w", err)
	}

	return &Result{
		Flows:   flowMap,
		Records: merged,
		Count:   len(merged),
	}, nil
}

// utcBounds converts local calendar dates into inclusive UTC instants:
// start_date means local midnight, end_date means local 23:59:59. The
// conversion uses the timezone's actual offset on that date, so bounds
// stay correct across daylight-saving transitions.
func utcBounds(startDate, endDate string, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if startDate != "" {
		day, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return nil, nil, apperrors.InvalidArgument("start_date", fmt.Sprintf("expected YYYY-MM-DD, got %q", startDate))
		}
		t := day.UTC()
		start = &t
	}

	if endDate != "" {
		day, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return nil, nil, apperrors.InvalidArgument("end_date", fmt.Sprintf("expected YYYY-MM-DD, got %q", endDate))
		}
		// Wall-clock end of day, not midnight plus a fixed duration:
		// the two differ on days with a daylight-saving transition
		t := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc).UTC()
		end = &t
	}

	if start != nil && end != nil && start.After(*end) {
		return nil, nil, apperrors.InvalidArgument("start_date", "start_date is after end_date")
	}

	return start, end, nil
}

// mergeDescending merges the two independently-sorted streams into one
// sequence, non-increasing in display timestamp.
func mergeDescending(sits []*models.Sit, checkins []*models.Checkin, loc *time.Location) []Record {
	merged := make([]Record, 0, len(sits)+len(checkins))

	i, j := 0, 0
	for i < len(sits) && j < len(checkins) {
		if !sits[i].DisplayTime().Before(checkins[j].DisplayTime()) {
			merged = append(merged, sitRecord(sits[i], loc))
			i++
		} else {
			merged = append(merged, checkinRecord(checkins[j], loc))
			j++
		}
	}
	for ; i < len(sits); i++ {
		merged = append(merged, sitRecord(sits[i], loc))
	}
	for ; j < len(checkins); j++ {
		merged = append(merged, checkinRecord(checkins[j], loc))
	}

	return merged
}

func sitRecord(sit *models.Sit, loc *time.Location) Record {
	return Record{
		Kind:      models.RecordKindSit,
		LocalTime: sit.DisplayTime().In(loc),
		Sit:       sit,
	}
}

func checkinRecord(checkin *models.Checkin, loc *time.Location) Record {
	return Record{
		Kind:      models.RecordKindCheckin,
		LocalTime: checkin.DisplayTime().In(loc),
		Checkin:   checkin,
	}
}

// hydrateFlows batch-resolves the distinct flow ids referenced by the
// selected checkins. Null or dangling references simply have no map
// entry.
func (s *service) hydrateFlows(ctx context.Context, checkins []*models.Checkin) (map[string]*models.Flow, error) {
	ids := make([]string, 0, len(checkins))
	for _, c := range checkins {
		if c.FlowID != nil && *c.FlowID != "" {
			ids = append(ids, *c.FlowID)
		}
	}
	return s.flows.GetFlowsByIDs(ctx, ids)
}
