// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit-log consumer.
package queue

// SessionFinalizedQueue is the durable queue finalized sessions are
// published to.
const SessionFinalizedQueue = "seating.session_finalized"

// SessionFinalizedEvent is published when a planner finalizes a session.
// It carries enough summary for downstream consumers to log or notify
// without loading the plan.
type SessionFinalizedEvent struct {
	MessageID        string   `json:"message_id"`
	EventID          string   `json:"event_id"`
	SessionID        string   `json:"session_id"`
	StartsAt         string   `json:"starts_at"`
	PlanningOrder    int      `json:"planning_order"`
	Replan           bool     `json:"replan"`
	TotalSeats       int      `json:"total_seats"`
	SeatedGuests     int      `json:"seated_guests"`
	SitTogether      int      `json:"sit_together_violations"`
	SitAway          int      `json:"sit_away_violations"`
	FlaggedForReview []string `json:"flagged_for_review"`
	FinalizedBy      string   `json:"finalized_by"`
	FinalizedAt      string   `json:"finalized_at"`
}
