package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seating-planner/internal/tracking"
)

const trackingMaxRetries = 5

// TrackingStore keeps one tracking.EventState per event in Redis as a
// JSON string under "tracking:<event_id>".
type TrackingStore struct {
	client *redis.Client
	prefix string
}

// NewTrackingStore creates a store from an existing Redis client.
func NewTrackingStore(client *redis.Client) *TrackingStore {
	return &TrackingStore{client: client, prefix: "tracking:"}
}

func (s *TrackingStore) key(eventID string) string {
	return s.prefix + eventID
}

// Load returns the state of eventID, or a fresh state when none is
// stored yet.
func (s *TrackingStore) Load(ctx context.Context, eventID string) (*tracking.EventState, error) {
	return s.load(ctx, s.client, eventID)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *TrackingStore) load(ctx context.Context, c stringGetter, eventID string) (*tracking.EventState, error) {
	data, err := c.Get(ctx, s.key(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tracking.NewEventState(eventID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tracking state: %w", err)
	}
	st, err := tracking.DecodeEventState(data)
	if err != nil {
		return nil, err
	}
	if st.EventID == "" {
		st.EventID = eventID
	}
	return st, nil
}

// Update applies fn to the state of eventID and stores the result.  The
// key is watched so a concurrent writer forces a retry; after repeated
// losses ErrConflict is returned.  An error from fn, including
// ErrNoChange, abandons the write and is returned as is.
func (s *TrackingStore) Update(ctx context.Context, eventID string, fn func(*tracking.EventState) error) (*tracking.EventState, error) {
	key := s.key(eventID)
	var out *tracking.EventState

	txf := func(tx *redis.Tx) error {
		st, err := s.load(ctx, tx, eventID)
		if err != nil {
			return err
		}
		out = st
		if err := fn(st); err != nil {
			return err
		}
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal tracking state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < trackingMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return nil, ErrConflict
}

// Delete drops all tracking state of eventID.
func (s *TrackingStore) Delete(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.key(eventID)).Err(); err != nil {
		return fmt.Errorf("delete tracking state: %w", err)
	}
	return nil
}
