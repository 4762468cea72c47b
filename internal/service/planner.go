// Package service orchestrates the seating engine over persisted plans.
// Each call loads the session plan, runs the engine and, for mutations,
// writes the plan back in one store update.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/seating-planner/internal/geometry"
	"github.com/iliyamo/seating-planner/internal/metrics"
	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/queue"
	"github.com/iliyamo/seating-planner/internal/repository"
	"github.com/iliyamo/seating-planner/internal/seating"
	"github.com/iliyamo/seating-planner/internal/swap"
	"github.com/iliyamo/seating-planner/internal/tracking"
	"github.com/iliyamo/seating-planner/internal/violation"
)

// PlanStore persists session plans.  Update must apply fn atomically
// and write nothing when fn returns an error.
type PlanStore interface {
	Create(ctx context.Context, p *model.SessionPlan) error
	Get(ctx context.Context, eventID, sessionID string) (*model.SessionPlan, error)
	Update(ctx context.Context, eventID, sessionID string, fn func(*model.SessionPlan) error) (*model.SessionPlan, error)
	Delete(ctx context.Context, eventID, sessionID string) error
}

// TrackingStore persists one tracking.EventState per event.
type TrackingStore interface {
	Load(ctx context.Context, eventID string) (*tracking.EventState, error)
	Update(ctx context.Context, eventID string, fn func(*tracking.EventState) error) (*tracking.EventState, error)
	Delete(ctx context.Context, eventID string) error
}

// EventPublisher announces finalized sessions.
type EventPublisher interface {
	PublishSessionFinalized(ctx context.Context, ev queue.SessionFinalizedEvent) error
}

// Planner is the application service behind the HTTP API and the CLI.
type Planner struct {
	plans     PlanStore
	tracking  TrackingStore
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewPlanner wires a Planner.  publisher and m may be nil.
func NewPlanner(plans PlanStore, tr TrackingStore, publisher EventPublisher, m *metrics.Metrics, log logrus.FieldLogger) *Planner {
	return &Planner{
		plans:     plans,
		tracking:  tr,
		publisher: publisher,
		metrics:   m,
		log:       log.WithField("component", "planner"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// TableSpec describes a table to build.  Seats applies to round tables,
// Sides to rectangle tables.
type TableSpec struct {
	ID        string               `json:"id"`
	Label     string               `json:"label"`
	Shape     model.TableShape     `json:"shape" validate:"required,oneof=round rectangle"`
	Seats     int                  `json:"seats" validate:"gte=0,lte=500"`
	Sides     model.RectangleSides `json:"sides"`
	Overrides geometry.Overrides   `json:"overrides"`
}

// Build constructs the table described by s.
func (s TableSpec) Build() (model.Table, error) {
	var t model.Table
	switch s.Shape {
	case model.TableShapeRound:
		t = geometry.CreateRoundTable(geometry.RoundTableOptions{ID: s.ID, Label: s.Label, SeatCount: s.Seats, Overrides: s.Overrides})
	case model.TableShapeRectangle:
		t = geometry.CreateRectangleTable(geometry.RectangleTableOptions{ID: s.ID, Label: s.Label, Sides: s.Sides, Overrides: s.Overrides})
	default:
		return model.Table{}, fmt.Errorf("%w: unknown shape %q", ErrInvalidTable, s.Shape)
	}
	if len(t.Seats) == 0 {
		return model.Table{}, fmt.Errorf("%w: table has no seats", ErrInvalidTable)
	}
	return t, nil
}

// CreateSessionInput is the payload of CreateSession.
type CreateSessionInput struct {
	EventID   string
	SessionID string
	StartTime time.Time
	Guests    []model.Guest
	Rules     model.ProximityRules
	Tables    []TableSpec
}

// CreateSession stores a new plan.  A missing session id is generated.
func (p *Planner) CreateSession(ctx context.Context, in CreateSessionInput) (*model.SessionPlan, error) {
	plan := &model.SessionPlan{
		EventID:   in.EventID,
		SessionID: in.SessionID,
		StartTime: in.StartTime.UTC(),
		Guests:    in.Guests,
		Rules:     in.Rules,
		Tables:    []model.Table{},
	}
	if plan.SessionID == "" {
		plan.SessionID = uuid.NewString()
	}
	if plan.Guests == nil {
		plan.Guests = []model.Guest{}
	}
	for _, spec := range in.Tables {
		t, err := spec.Build()
		if err != nil {
			return nil, err
		}
		if hasTable(plan.Tables, t.ID) {
			return nil, ErrTableConflict
		}
		plan.Tables = append(plan.Tables, t)
	}
	if err := p.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"event_id": plan.EventID, "session_id": plan.SessionID}).Info("session created")
	return plan, nil
}

func hasTable(tables []model.Table, id string) bool {
	for _, t := range tables {
		if t.ID == id {
			return true
		}
	}
	return false
}

// GetSession returns the stored plan.
func (p *Planner) GetSession(ctx context.Context, eventID, sessionID string) (*model.SessionPlan, error) {
	return p.plans.Get(ctx, eventID, sessionID)
}

// DeleteSession removes the plan and the session's tracking records.
// Its planning order is retired, never reused.
func (p *Planner) DeleteSession(ctx context.Context, eventID, sessionID string) error {
	if err := p.plans.Delete(ctx, eventID, sessionID); err != nil {
		return err
	}
	var removed int
	_, err := p.tracking.Update(ctx, eventID, func(st *tracking.EventState) error {
		removed = st.DeleteSession(sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("drop tracking records: %w", err)
	}
	p.log.WithFields(logrus.Fields{"event_id": eventID, "session_id": sessionID, "records": removed}).Info("session deleted")
	return nil
}

// AddTable builds a table from spec and appends it to the plan.
func (p *Planner) AddTable(ctx context.Context, eventID, sessionID string, spec TableSpec) (*model.Table, error) {
	t, err := spec.Build()
	if err != nil {
		return nil, err
	}
	_, err = p.plans.Update(ctx, eventID, sessionID, func(plan *model.SessionPlan) error {
		if hasTable(plan.Tables, t.ID) {
			return ErrTableConflict
		}
		plan.Tables = append(plan.Tables, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func guestInfo(lookup model.GuestLookup, guestID string) (model.GuestInfo, *seating.AssignmentResult) {
	if guestID == "" {
		return nil, nil
	}
	g := lookup.Info(guestID)
	if g == nil {
		return nil, &seating.AssignmentResult{Reason: fmt.Sprintf("guest %s not found", guestID)}
	}
	return g, nil
}

// ValidateAssignment reports whether guestID may take seat without
// changing anything.  An empty guestID asks about clearing the seat.
func (p *Planner) ValidateAssignment(ctx context.Context, eventID, sessionID string, seat model.SeatRef, guestID string) (seating.AssignmentResult, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return seating.AssignmentResult{}, err
	}
	g, refused := guestInfo(plan.Lookup(), guestID)
	if refused != nil {
		p.metrics.Validation("assign", false)
		return *refused, nil
	}
	_, s := model.FindSeat(plan.Tables, seat)
	res := seating.ValidateGuestSeatAssignment(g, s)
	p.metrics.Validation("assign", res.CanAssign)
	return res, nil
}

// mutate runs apply inside a plan update.  apply reports whether it
// changed the plan; a refusal is not an error and writes nothing.
func (p *Planner) mutate(ctx context.Context, eventID, sessionID string, apply func(*model.SessionPlan) bool) error {
	_, err := p.plans.Update(ctx, eventID, sessionID, func(plan *model.SessionPlan) error {
		if !apply(plan) {
			return repository.ErrNoChange
		}
		return nil
	})
	if errors.Is(err, repository.ErrNoChange) {
		return nil
	}
	return err
}

// AssignGuest seats guestID, moving them from any other seat.
func (p *Planner) AssignGuest(ctx context.Context, eventID, sessionID string, seat model.SeatRef, guestID string) (seating.AssignmentResult, error) {
	var res seating.AssignmentResult
	err := p.mutate(ctx, eventID, sessionID, func(plan *model.SessionPlan) bool {
		g, refused := guestInfo(plan.Lookup(), guestID)
		if refused != nil {
			res = *refused
			return false
		}
		res = seating.AssignGuest(plan.Tables, seat, g)
		return res.CanAssign
	})
	p.metrics.Validation("assign", res.CanAssign)
	return res, err
}

// ClearSeat removes the occupant of seat.  force clears locked seats
// too; callers decide who may force.
func (p *Planner) ClearSeat(ctx context.Context, eventID, sessionID string, seat model.SeatRef, force bool) (seating.AssignmentResult, error) {
	var res seating.AssignmentResult
	err := p.mutate(ctx, eventID, sessionID, func(plan *model.SessionPlan) bool {
		if force {
			res = seating.ForceClearSeat(plan.Tables, seat)
		} else {
			res = seating.ClearSeat(plan.Tables, seat)
		}
		return res.CanAssign
	})
	return res, err
}

// SetSeatLock locks or unlocks seat.
func (p *Planner) SetSeatLock(ctx context.Context, eventID, sessionID string, seat model.SeatRef, locked bool) (seating.AssignmentResult, error) {
	var res seating.AssignmentResult
	err := p.mutate(ctx, eventID, sessionID, func(plan *model.SessionPlan) bool {
		res = seating.SetSeatLock(plan.Tables, seat, locked)
		return res.CanAssign
	})
	return res, err
}

// SetSeatMode changes the eligibility mode of seat.
func (p *Planner) SetSeatMode(ctx context.Context, eventID, sessionID string, seat model.SeatRef, mode model.SeatMode) (seating.AssignmentResult, error) {
	var res seating.AssignmentResult
	err := p.mutate(ctx, eventID, sessionID, func(plan *model.SessionPlan) bool {
		res = seating.SetSeatMode(plan.Tables, seat, mode, plan.Lookup())
		return res.CanAssign
	})
	p.metrics.Validation("mode", res.CanAssign)
	return res, err
}

// ValidateSwap reports whether the occupants of two seats may trade
// places.
func (p *Planner) ValidateSwap(ctx context.Context, eventID, sessionID string, seat1, seat2 model.SeatRef) (seating.SwapResult, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return seating.SwapResult{}, err
	}
	lookup := plan.Lookup()
	_, s1 := model.FindSeat(plan.Tables, seat1)
	_, s2 := model.FindSeat(plan.Tables, seat2)
	var g1, g2 model.GuestInfo
	if s1 != nil {
		g1 = lookup.Info(s1.AssignedGuestID)
	}
	if s2 != nil {
		g2 = lookup.Info(s2.AssignedGuestID)
	}
	res := seating.ValidateSeatSwap(s1, s2, g1, g2)
	p.metrics.Validation("swap", res.CanSwap)
	return res, nil
}

// Swap trades the occupants of two seats when the swap is legal.
func (p *Planner) Swap(ctx context.Context, eventID, sessionID string, seat1, seat2 model.SeatRef) (seating.SwapResult, error) {
	var res seating.SwapResult
	err := p.mutate(ctx, eventID, sessionID, func(plan *model.SessionPlan) bool {
		res = seating.SwapSeats(plan.Tables, seat1, seat2, plan.Lookup())
		return res.CanSwap
	})
	p.metrics.Validation("swap", res.CanSwap)
	return res, err
}

// PredictSwap reports the violations the plan would have after swapping
// two seats.  Nothing is stored.
func (p *Planner) PredictSwap(ctx context.Context, eventID, sessionID string, seat1, seat2 model.SeatRef) (swap.Prediction, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return swap.Prediction{}, err
	}
	return swap.PredictViolationsAfterSwap(plan.Tables, seat1, seat2, plan.Rules, plan.Lookup()), nil
}

// SwapCandidates ranks the legal swap targets of source.
func (p *Planner) SwapCandidates(ctx context.Context, eventID, sessionID string, source model.SeatRef) ([]swap.Candidate, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, s := model.FindSeat(plan.Tables, source); s == nil {
		return nil, ErrSeatNotFound
	}
	return swap.GetSwapCandidates(source, plan.Tables, plan.Lookup(), plan.Rules), nil
}

// ViolationReport is the result of Violations.
type ViolationReport struct {
	Counts     model.ViolationCounts `json:"counts"`
	Violations []model.Violation     `json:"violations"`
}

// Violations detects the broken rules of a plan.  A non-empty guestID
// narrows the list (not the counts) to violations involving that guest.
func (p *Planner) Violations(ctx context.Context, eventID, sessionID, guestID string) (ViolationReport, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return ViolationReport{}, err
	}
	found := violation.DetectProximityViolations(plan.Tables, plan.Rules, plan.Lookup())
	counts := violation.Count(found)
	p.metrics.Violations(counts.SitTogether, counts.SitAway)
	if guestID != "" {
		found = violation.ForGuest(found, guestID)
		if found == nil {
			found = []model.Violation{}
		}
	}
	return ViolationReport{Counts: counts, Violations: found}, nil
}

// FinalizeResult is the result of Finalize.
type FinalizeResult struct {
	Tracking         tracking.RecordOutcome `json:"tracking"`
	Counts           model.ViolationCounts  `json:"counts"`
	FlaggedForReview []string               `json:"flagged_for_review"`
}

// Finalize records the adjacency of tracked guests for the session and
// announces it.  Publishing failures are logged only.
func (p *Planner) Finalize(ctx context.Context, eventID, sessionID, actor string) (*FinalizeResult, error) {
	plan, err := p.plans.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, err
	}
	out := &FinalizeResult{FlaggedForReview: []string{}}
	out.Counts = violation.Count(violation.DetectProximityViolations(plan.Tables, plan.Rules, plan.Lookup()))

	_, err = p.tracking.Update(ctx, eventID, func(st *tracking.EventState) error {
		// runs again on every lost WATCH
		out.FlaggedForReview = []string{}
		out.Tracking = st.RecordSessionAdjacency(sessionID, plan.StartTime, plan.Tables)
		if out.Tracking.Replan {
			for _, r := range st.GetSessionsNeedingReview() {
				if r.PlanningOrder > out.Tracking.PlanningOrder {
					out.FlaggedForReview = append(out.FlaggedForReview, r.SessionID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record adjacency: %w", err)
	}
	p.metrics.Tracking(out.Tracking.Recorded, out.Tracking.Flagged)

	log := p.log.WithFields(logrus.Fields{
		"event_id":       eventID,
		"session_id":     sessionID,
		"planning_order": out.Tracking.PlanningOrder,
		"replan":         out.Tracking.Replan,
	})
	log.Info("session finalized")

	if p.publisher != nil {
		ev := queue.SessionFinalizedEvent{
			MessageID:        uuid.NewString(),
			EventID:          eventID,
			SessionID:        sessionID,
			StartsAt:         plan.StartTime.Format(time.RFC3339),
			PlanningOrder:    out.Tracking.PlanningOrder,
			Replan:           out.Tracking.Replan,
			TotalSeats:       seatCount(plan.Tables),
			SeatedGuests:     seatedCount(plan.Tables),
			SitTogether:      out.Counts.SitTogether,
			SitAway:          out.Counts.SitAway,
			FlaggedForReview: out.FlaggedForReview,
			FinalizedBy:      actor,
			FinalizedAt:      p.now().Format(time.RFC3339),
		}
		if err := p.publisher.PublishSessionFinalized(ctx, ev); err != nil {
			log.WithError(err).Warn("publish session finalized failed")
		}
	}
	return out, nil
}

func seatCount(tables []model.Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Seats)
	}
	return n
}

func seatedCount(tables []model.Table) int {
	n := 0
	for _, t := range tables {
		for i := range t.Seats {
			if t.Seats[i].Occupied() {
				n++
			}
		}
	}
	return n
}

// SetGuestTracked turns adjacency tracking on or off for guestID.
func (p *Planner) SetGuestTracked(ctx context.Context, eventID, guestID string, tracked bool) error {
	_, err := p.tracking.Update(ctx, eventID, func(st *tracking.EventState) error {
		if st.IsTracked(guestID) == tracked {
			return repository.ErrNoChange
		}
		st.SetGuestTracked(guestID, tracked)
		return nil
	})
	if errors.Is(err, repository.ErrNoChange) {
		return nil
	}
	return err
}

// GuestHistory lists how often each guest sat next to trackedGuestID in
// sessions planned before sessionID.
func (p *Planner) GuestHistory(ctx context.Context, eventID, sessionID, trackedGuestID string) ([]tracking.AdjacencyCount, error) {
	st, err := p.tracking.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return st.GetTrackedGuestHistory(sessionID, trackedGuestID), nil
}

// SessionsNeedingReview lists sessions flagged by a re-plan.
func (p *Planner) SessionsNeedingReview(ctx context.Context, eventID string) ([]tracking.SessionReview, error) {
	st, err := p.tracking.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return st.GetSessionsNeedingReview(), nil
}

// AcknowledgeReview clears the review flags of sessionID and returns
// how many records were cleared.
func (p *Planner) AcknowledgeReview(ctx context.Context, eventID, sessionID string) (int, error) {
	var n int
	_, err := p.tracking.Update(ctx, eventID, func(st *tracking.EventState) error {
		if n = st.AcknowledgeSessionReview(sessionID); n == 0 {
			return repository.ErrNoChange
		}
		return nil
	})
	if errors.Is(err, repository.ErrNoChange) {
		return 0, nil
	}
	return n, err
}
