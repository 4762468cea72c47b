// Package handler exposes the seating planner over HTTP.  Handlers parse
// and validate requests, call the service layer and translate its
// results and sentinel errors into JSON responses.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-planner/internal/middleware"
	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/service"
	"github.com/iliyamo/seating-planner/internal/utils"
)

// PlannerHandler serves the session, seat, swap and tracking endpoints
// under /v1/events/:event_id.
type PlannerHandler struct {
	Planner *service.Planner
}

// NewPlannerHandler panics when planner is nil.
func NewPlannerHandler(planner *service.Planner) *PlannerHandler {
	if planner == nil {
		panic("nil planner passed to NewPlannerHandler")
	}
	return &PlannerHandler{Planner: planner}
}

type createSessionRequest struct {
	SessionID string               `json:"session_id" validate:"omitempty,max=64"`
	StartTime time.Time            `json:"start_time" validate:"required"`
	Guests    []guestBody          `json:"guests" validate:"dive"`
	Rules     model.ProximityRules `json:"rules"`
	Tables    []service.TableSpec  `json:"tables" validate:"dive"`
}

type guestBody struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	FromHost bool   `json:"from_host"`
}

type seatBody struct {
	TableID string `json:"table_id"`
	SeatID  string `json:"seat_id" validate:"required"`
}

func (s seatBody) ref() model.SeatRef {
	return model.SeatRef{TableID: s.TableID, SeatID: s.SeatID}
}

type validateAssignmentRequest struct {
	seatBody
	GuestID string `json:"guest_id"`
}

type assignRequest struct {
	TableID string `json:"table_id"`
	GuestID string `json:"guest_id" validate:"required"`
}

type lockRequest struct {
	TableID string `json:"table_id"`
	Locked  *bool  `json:"locked" validate:"required"`
}

type modeRequest struct {
	TableID string         `json:"table_id"`
	Mode    model.SeatMode `json:"mode" validate:"required,oneof=default host-only external-only"`
}

type swapRequest struct {
	Seat1 seatBody `json:"seat1"`
	Seat2 seatBody `json:"seat2"`
}

type trackRequest struct {
	Tracked *bool `json:"tracked" validate:"required"`
}

// seatParam addresses the seat named in the path.  The table may be
// narrowed with a table_id in the body or query.
func seatParam(c echo.Context, tableID string) model.SeatRef {
	if tableID == "" {
		tableID = c.QueryParam("table_id")
	}
	return model.SeatRef{TableID: tableID, SeatID: c.Param("seat_id")}
}

// refusal answers a mutation the engine refused with 409 and the result
// that explains why.
func refusal(c echo.Context, ok bool, result interface{}) error {
	if !ok {
		return c.JSON(http.StatusConflict, result)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSession handles POST /sessions.
func (h *PlannerHandler) CreateSession(c echo.Context) error {
	var body createSessionRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	in := service.CreateSessionInput{
		EventID:   c.Param("event_id"),
		SessionID: body.SessionID,
		StartTime: body.StartTime,
		Rules:     body.Rules,
		Tables:    body.Tables,
	}
	for _, g := range body.Guests {
		in.Guests = append(in.Guests, model.Guest{ID: g.ID, Name: g.Name, FromHost: g.FromHost})
	}
	plan, err := h.Planner.CreateSession(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, plan)
}

// GetSession handles GET /sessions/:session_id.
func (h *PlannerHandler) GetSession(c echo.Context) error {
	plan, err := h.Planner.GetSession(c.Request().Context(), c.Param("event_id"), c.Param("session_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// DeleteSession handles DELETE /sessions/:session_id.
func (h *PlannerHandler) DeleteSession(c echo.Context) error {
	if err := h.Planner.DeleteSession(c.Request().Context(), c.Param("event_id"), c.Param("session_id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddTable handles POST /sessions/:session_id/tables.
func (h *PlannerHandler) AddTable(c echo.Context) error {
	var spec service.TableSpec
	if err := decode(c, &spec); err != nil {
		return respondError(c, err)
	}
	t, err := h.Planner.AddTable(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), spec)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ValidateAssignment handles POST /sessions/:session_id/assignments/validate.
// An empty guest_id asks whether the seat may be cleared.
func (h *PlannerHandler) ValidateAssignment(c echo.Context) error {
	var body validateAssignmentRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.ValidateAssignment(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), body.ref(), body.GuestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// AssignGuest handles PUT /sessions/:session_id/seats/:seat_id/guest.
func (h *PlannerHandler) AssignGuest(c echo.Context) error {
	var body assignRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.AssignGuest(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), seatParam(c, body.TableID), body.GuestID)
	if err != nil {
		return respondError(c, err)
	}
	return refusal(c, res.CanAssign, res)
}

// ClearSeat handles DELETE /sessions/:session_id/seats/:seat_id/guest.
// force=true clears a locked seat and is reserved for admins.
func (h *PlannerHandler) ClearSeat(c echo.Context) error {
	var force bool
	if err := echo.QueryParamsBinder(c).Bool("force", &force).BindError(); err != nil {
		return respondError(c, badRequest("force must be a boolean"))
	}
	if force && !middleware.HasRole(c, utils.RoleAdmin) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "force requires admin role"})
	}
	res, err := h.Planner.ClearSeat(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), seatParam(c, ""), force)
	if err != nil {
		return respondError(c, err)
	}
	return refusal(c, res.CanAssign, res)
}

// SetSeatLock handles PUT /sessions/:session_id/seats/:seat_id/lock.
func (h *PlannerHandler) SetSeatLock(c echo.Context) error {
	var body lockRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.SetSeatLock(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), seatParam(c, body.TableID), *body.Locked)
	if err != nil {
		return respondError(c, err)
	}
	return refusal(c, res.CanAssign, res)
}

// SetSeatMode handles PUT /sessions/:session_id/seats/:seat_id/mode.
func (h *PlannerHandler) SetSeatMode(c echo.Context) error {
	var body modeRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.SetSeatMode(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), seatParam(c, body.TableID), body.Mode)
	if err != nil {
		return respondError(c, err)
	}
	return refusal(c, res.CanAssign, res)
}

// ValidateSwap handles POST /sessions/:session_id/swaps/validate.
func (h *PlannerHandler) ValidateSwap(c echo.Context) error {
	var body swapRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.ValidateSwap(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), body.Seat1.ref(), body.Seat2.ref())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// PredictSwap handles POST /sessions/:session_id/swaps/predict.
func (h *PlannerHandler) PredictSwap(c echo.Context) error {
	var body swapRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	p, err := h.Planner.PredictSwap(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), body.Seat1.ref(), body.Seat2.ref())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Swap handles POST /sessions/:session_id/swaps.
func (h *PlannerHandler) Swap(c echo.Context) error {
	var body swapRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	res, err := h.Planner.Swap(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), body.Seat1.ref(), body.Seat2.ref())
	if err != nil {
		return respondError(c, err)
	}
	return refusal(c, res.CanSwap, res)
}

// SwapCandidates handles GET /sessions/:session_id/seats/:seat_id/swap-candidates.
func (h *PlannerHandler) SwapCandidates(c echo.Context) error {
	out, err := h.Planner.SwapCandidates(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), seatParam(c, ""))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"candidates": out})
}

// Violations handles GET /sessions/:session_id/violations, optionally
// filtered with guest_id.
func (h *PlannerHandler) Violations(c echo.Context) error {
	rep, err := h.Planner.Violations(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), c.QueryParam("guest_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// Finalize handles POST /sessions/:session_id/finalize.
func (h *PlannerHandler) Finalize(c echo.Context) error {
	res, err := h.Planner.Finalize(c.Request().Context(), c.Param("event_id"), c.Param("session_id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// SetGuestTracked handles PUT /tracking/guests/:guest_id.
func (h *PlannerHandler) SetGuestTracked(c echo.Context) error {
	var body trackRequest
	if err := decode(c, &body); err != nil {
		return respondError(c, err)
	}
	guestID := c.Param("guest_id")
	if err := h.Planner.SetGuestTracked(c.Request().Context(), c.Param("event_id"), guestID, *body.Tracked); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"guest_id": guestID, "tracked": *body.Tracked})
}

// GuestHistory handles GET /tracking/guests/:guest_id/history?session_id=.
// Only sessions planned before session_id count.
func (h *PlannerHandler) GuestHistory(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return respondError(c, badRequest("session_id is required"))
	}
	guestID := c.Param("guest_id")
	hist, err := h.Planner.GuestHistory(c.Request().Context(), c.Param("event_id"), sessionID, guestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"guest_id": guestID, "session_id": sessionID, "history": hist})
}

// SessionsNeedingReview handles GET /tracking/reviews.
func (h *PlannerHandler) SessionsNeedingReview(c echo.Context) error {
	out, err := h.Planner.SessionsNeedingReview(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// AcknowledgeReview handles POST /tracking/reviews/:session_id/ack.
func (h *PlannerHandler) AcknowledgeReview(c echo.Context) error {
	n, err := h.Planner.AcknowledgeReview(c.Request().Context(), c.Param("event_id"), c.Param("session_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": c.Param("session_id"), "cleared": n})
}
