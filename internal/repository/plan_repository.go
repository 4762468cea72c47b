package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/seating-planner/internal/model"
)

// PlanSchema creates the table backing PlanRepo.  The whole plan is kept
// as one JSON document; start_time is duplicated for listing queries.
const PlanSchema = `CREATE TABLE IF NOT EXISTS session_plans (
	event_id   VARCHAR(64)  NOT NULL,
	session_id VARCHAR(64)  NOT NULL,
	start_time DATETIME     NOT NULL,
	document   JSON         NOT NULL,
	updated_at DATETIME     NOT NULL,
	PRIMARY KEY (event_id, session_id)
)`

const mysqlDuplicateEntry = 1062

// PlanRepo stores session plans in MySQL.
type PlanRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPlanRepo constructs a PlanRepo with the provided DB handle.
func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the session_plans table when missing.
func (r *PlanRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, PlanSchema); err != nil {
		return fmt.Errorf("ensure session_plans: %w", err)
	}
	return nil
}

// Create inserts a new plan.  It returns ErrConflict when the session
// already exists.  UpdatedAt is set on p.
func (r *PlanRepo) Create(ctx context.Context, p *model.SessionPlan) error {
	p.UpdatedAt = r.now()
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	const q = `INSERT INTO session_plans (event_id, session_id, start_time, document, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, p.EventID, p.SessionID, p.StartTime.UTC(), doc, p.UpdatedAt); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Get fetches one plan.  It returns ErrPlanNotFound if no row exists.
func (r *PlanRepo) Get(ctx context.Context, eventID, sessionID string) (*model.SessionPlan, error) {
	const q = `SELECT document FROM session_plans WHERE event_id = ? AND session_id = ?`
	var doc []byte
	if err := r.db.QueryRowContext(ctx, q, eventID, sessionID).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return decodePlan(doc)
}

// Update loads the plan under a row lock, applies fn and writes the
// result back in the same transaction.  When fn returns an error,
// including ErrNoChange, nothing is written and that error is returned.
func (r *PlanRepo) Update(ctx context.Context, eventID, sessionID string, fn func(*model.SessionPlan) error) (*model.SessionPlan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const qSelect = `SELECT document FROM session_plans WHERE event_id = ? AND session_id = ? FOR UPDATE`
	var doc []byte
	if err := tx.QueryRowContext(ctx, qSelect, eventID, sessionID).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	p, err := decodePlan(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return p, err
	}

	p.EventID, p.SessionID = eventID, sessionID
	p.UpdatedAt = r.now()
	if doc, err = json.Marshal(p); err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	const qUpdate = `UPDATE session_plans SET start_time = ?, document = ?, updated_at = ? WHERE event_id = ? AND session_id = ?`
	if _, err := tx.ExecContext(ctx, qUpdate, p.StartTime.UTC(), doc, p.UpdatedAt, eventID, sessionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a plan.  It returns ErrPlanNotFound when no row is
// affected.
func (r *PlanRepo) Delete(ctx context.Context, eventID, sessionID string) error {
	const q = `DELETE FROM session_plans WHERE event_id = ? AND session_id = ?`
	res, err := r.db.ExecContext(ctx, q, eventID, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func decodePlan(doc []byte) (*model.SessionPlan, error) {
	var p model.SessionPlan
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}
