package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/tracking"
)

// MemoryPlanStore keeps plans in process.  It is used when no database
// is configured and in tests.  Values are copied on the way in and out.
type MemoryPlanStore struct {
	mu    sync.Mutex
	plans map[string][]byte
}

func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{plans: map[string][]byte{}}
}

func planKey(eventID, sessionID string) string { return eventID + "/" + sessionID }

func (m *MemoryPlanStore) Create(_ context.Context, p *model.SessionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := planKey(p.EventID, p.SessionID)
	if _, ok := m.plans[k]; ok {
		return ErrConflict
	}
	p.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.plans[k] = doc
	return nil
}

func (m *MemoryPlanStore) Get(_ context.Context, eventID, sessionID string) (*model.SessionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.plans[planKey(eventID, sessionID)]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return decodePlan(doc)
}

func (m *MemoryPlanStore) Update(_ context.Context, eventID, sessionID string, fn func(*model.SessionPlan) error) (*model.SessionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := planKey(eventID, sessionID)
	doc, ok := m.plans[k]
	if !ok {
		return nil, ErrPlanNotFound
	}
	p, err := decodePlan(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return p, err
	}
	p.EventID, p.SessionID = eventID, sessionID
	p.UpdatedAt = time.Now().UTC()
	if doc, err = json.Marshal(p); err != nil {
		return nil, err
	}
	m.plans[k] = doc
	return p, nil
}

func (m *MemoryPlanStore) Delete(_ context.Context, eventID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := planKey(eventID, sessionID)
	if _, ok := m.plans[k]; !ok {
		return ErrPlanNotFound
	}
	delete(m.plans, k)
	return nil
}

// MemoryTrackingStore is the in-process counterpart of TrackingStore.
type MemoryTrackingStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

func NewMemoryTrackingStore() *MemoryTrackingStore {
	return &MemoryTrackingStore{states: map[string][]byte{}}
}

func (m *MemoryTrackingStore) Load(_ context.Context, eventID string) (*tracking.EventState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(eventID)
}

func (m *MemoryTrackingStore) load(eventID string) (*tracking.EventState, error) {
	data, ok := m.states[eventID]
	if !ok {
		return tracking.NewEventState(eventID), nil
	}
	return tracking.DecodeEventState(data)
}

func (m *MemoryTrackingStore) Update(_ context.Context, eventID string, fn func(*tracking.EventState) error) (*tracking.EventState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.load(eventID)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return st, err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	m.states[eventID] = data
	return st, nil
}

func (m *MemoryTrackingStore) Delete(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, eventID)
	return nil
}
