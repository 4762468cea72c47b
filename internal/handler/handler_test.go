package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seating-planner/internal/metrics"
	"github.com/iliyamo/seating-planner/internal/middleware"
	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/repository"
	"github.com/iliyamo/seating-planner/internal/service"
	"github.com/iliyamo/seating-planner/internal/utils"
)

// newServer mounts the planner routes behind a stub that grants role.
func newServer(t *testing.T, role string) *echo.Echo {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	planner := service.NewPlanner(repository.NewMemoryPlanStore(), repository.NewMemoryTrackingStore(), nil, metrics.New(prometheus.NewRegistry()), logger)
	h := NewPlannerHandler(planner)

	e := echo.New()
	e.Validator = NewValidator()
	g := e.Group("/v1/events/:event_id", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, "u1")
			c.Set(middleware.CtxRole, role)
			return next(c)
		}
	})
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:session_id", h.GetSession)
	g.DELETE("/sessions/:session_id", h.DeleteSession)
	g.POST("/sessions/:session_id/tables", h.AddTable)
	g.POST("/sessions/:session_id/assignments/validate", h.ValidateAssignment)
	g.PUT("/sessions/:session_id/seats/:seat_id/guest", h.AssignGuest)
	g.DELETE("/sessions/:session_id/seats/:seat_id/guest", h.ClearSeat)
	g.PUT("/sessions/:session_id/seats/:seat_id/lock", h.SetSeatLock)
	g.PUT("/sessions/:session_id/seats/:seat_id/mode", h.SetSeatMode)
	g.POST("/sessions/:session_id/swaps/validate", h.ValidateSwap)
	g.POST("/sessions/:session_id/swaps/predict", h.PredictSwap)
	g.POST("/sessions/:session_id/swaps", h.Swap)
	g.GET("/sessions/:session_id/seats/:seat_id/swap-candidates", h.SwapCandidates)
	g.GET("/sessions/:session_id/violations", h.Violations)
	g.POST("/sessions/:session_id/finalize", h.Finalize)
	g.PUT("/tracking/guests/:guest_id", h.SetGuestTracked)
	g.GET("/tracking/guests/:guest_id/history", h.GuestHistory)
	g.GET("/tracking/reviews", h.SessionsNeedingReview)
	g.POST("/tracking/reviews/:session_id/ack", h.AcknowledgeReview)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

const sessionBody = `{
	"session_id": "s1",
	"start_time": "2026-06-01T18:00:00Z",
	"guests": [
		{"id": "g1", "name": "Grace", "from_host": true},
		{"id": "g2", "name": "Gil"},
		{"id": "g3", "name": "Gwen"}
	],
	"rules": {"sit_together": [["g1", "g2"]]},
	"tables": [{"id": "t", "shape": "round", "seats": 8}]
}`

const base = "/v1/events/ev/sessions/s1"

func seated(e *echo.Echo, seatID, guestID string) *httptest.ResponseRecorder {
	return do(e, http.MethodPut, base+"/seats/"+seatID+"/guest", `{"guest_id":"`+guestID+`"}`)
}

func TestCreateAndGetSession(t *testing.T) {
	e := newServer(t, utils.RolePlanner)

	rec := do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan model.SessionPlan
	decodeBody(t, rec, &plan)
	assert.Equal(t, "ev", plan.EventID)
	require.Len(t, plan.Tables, 1)
	assert.Len(t, plan.Tables[0].Seats, 8)

	rec = do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodGet, base, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/v1/events/ev/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"session not found"}`, rec.Body.String())
}

func TestCreateSession_Validation(t *testing.T) {
	e := newServer(t, utils.RolePlanner)

	rec := do(e, http.MethodPost, "/v1/events/ev/sessions", `{"tables":[{"shape":"hexagon"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "required", body.Fields["createSessionRequest.StartTime"])
	assert.Equal(t, "oneof", body.Fields["createSessionRequest.Tables[0].Shape"])

	rec = do(e, http.MethodPost, "/v1/events/ev/sessions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/events/ev/sessions", `{"start_time":"2026-06-01T18:00:00Z","tables":[{"shape":"round","seats":0}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a table without seats is invalid")
}

func TestAddTable(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)

	rec := do(e, http.MethodPost, base+"/tables", `{"id":"r","shape":"rectangle","sides":{"top":2,"bottom":2}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var table model.Table
	decodeBody(t, rec, &table)
	assert.Len(t, table.Seats, 4)

	rec = do(e, http.MethodPost, base+"/tables", `{"id":"r","shape":"round","seats":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSeatLifecycle(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)

	rec := do(e, http.MethodPost, base+"/assignments/validate", `{"seat_id":"t-seat-0","guest_id":"g1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"can_assign":true}`, rec.Body.String())

	require.Equal(t, http.StatusOK, seated(e, "t-seat-0", "g1").Code)

	rec = seated(e, "t-seat-2", "g9")
	assert.Equal(t, http.StatusConflict, rec.Code, "unknown guest refused")
	var res struct {
		CanAssign bool   `json:"can_assign"`
		Reason    string `json:"reason"`
	}
	decodeBody(t, rec, &res)
	assert.False(t, res.CanAssign)
	assert.Equal(t, "guest g9 not found", res.Reason)

	rec = do(e, http.MethodPut, base+"/seats/t-seat-1/mode", `{"mode":"host-only"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusConflict, seated(e, "t-seat-1", "g2").Code, "external guest in host-only seat")

	rec = do(e, http.MethodPut, base+"/seats/t-seat-1/mode", `{"mode":"vip"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPut, base+"/seats/t-seat-0/lock", `{"locked":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodDelete, base+"/seats/t-seat-0/guest", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "locked seat needs force")

	rec = do(e, http.MethodPut, base+"/seats/t-seat-0/lock", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "locked is required")
}

func TestClearSeat_ForceNeedsAdmin(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-0", "g1").Code)

	rec := do(e, http.MethodDelete, base+"/seats/t-seat-0/guest?force=true", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodDelete, base+"/seats/t-seat-0/guest?force=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	admin := newServer(t, utils.RoleAdmin)
	require.Equal(t, http.StatusCreated, do(admin, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)
	require.Equal(t, http.StatusOK, seated(admin, "t-seat-0", "g1").Code)
	require.Equal(t, http.StatusOK, do(admin, http.MethodPut, base+"/seats/t-seat-0/lock", `{"locked":true}`).Code)

	rec = do(admin, http.MethodDelete, base+"/seats/t-seat-0/guest?force=true", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSwapsAndViolations(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-0", "g1").Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-1", "g3").Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-4", "g2").Code)

	rec := do(e, http.MethodGet, base+"/violations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep service.ViolationReport
	decodeBody(t, rec, &rep)
	assert.Equal(t, 1, rep.Counts.SitTogether)

	rec = do(e, http.MethodGet, base+"/violations?guest_id=g3", "")
	decodeBody(t, rec, &rep)
	assert.Empty(t, rep.Violations)
	assert.Equal(t, 1, rep.Counts.Total, "counts cover the whole plan")

	swapBody := `{"seat1":{"seat_id":"t-seat-1"},"seat2":{"seat_id":"t-seat-4"}}`
	rec = do(e, http.MethodPost, base+"/swaps/validate", swapBody)
	assert.JSONEq(t, `{"can_swap":true}`, rec.Body.String())

	rec = do(e, http.MethodPost, base+"/swaps/predict", swapBody)
	var pred struct {
		Computable bool                  `json:"computable"`
		Counts     model.ViolationCounts `json:"counts"`
	}
	decodeBody(t, rec, &pred)
	assert.True(t, pred.Computable)
	assert.Equal(t, 0, pred.Counts.Total)

	rec = do(e, http.MethodGet, base+"/seats/t-seat-4/swap-candidates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cands struct {
		Candidates []struct {
			Seat        model.SeatRef `json:"seat"`
			Improvement int           `json:"improvement"`
		} `json:"candidates"`
	}
	decodeBody(t, rec, &cands)
	require.NotEmpty(t, cands.Candidates)
	assert.Equal(t, "t-seat-1", cands.Candidates[0].Seat.SeatID)
	assert.Equal(t, 1, cands.Candidates[0].Improvement)

	rec = do(e, http.MethodGet, base+"/seats/ghost/swap-candidates", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, base+"/swaps", swapBody)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodGet, base+"/violations", "")
	decodeBody(t, rec, &rep)
	assert.Equal(t, 0, rep.Counts.Total)

	rec = do(e, http.MethodPost, base+"/swaps", `{"seat1":{"seat_id":"t-seat-1"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFinalizeAndTracking(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", strings.Replace(sessionBody, `"s1"`, `"s2"`, 1)).Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-0", "g1").Code)
	require.Equal(t, http.StatusOK, seated(e, "t-seat-1", "g2").Code)
	s2 := "/v1/events/ev/sessions/s2"
	require.Equal(t, http.StatusOK, do(e, http.MethodPut, s2+"/seats/t-seat-0/guest", `{"guest_id":"g1"}`).Code)
	require.Equal(t, http.StatusOK, do(e, http.MethodPut, s2+"/seats/t-seat-1/guest", `{"guest_id":"g3"}`).Code)

	rec := do(e, http.MethodPut, "/v1/events/ev/tracking/guests/g1", `{"tracked":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"guest_id":"g1","tracked":true}`, rec.Body.String())

	rec = do(e, http.MethodPost, base+"/finalize", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fin service.FinalizeResult
	decodeBody(t, rec, &fin)
	assert.Equal(t, 1, fin.Tracking.PlanningOrder)
	assert.Equal(t, 1, fin.Tracking.Recorded)

	rec = do(e, http.MethodPost, s2+"/finalize", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/v1/events/ev/tracking/guests/g1/history?session_id=s2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"guest_id":"g1","session_id":"s2","history":[{"guest_id":"g2","count":1}]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/v1/events/ev/tracking/guests/g1/history", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// re-planning s1 flags s2
	rec = do(e, http.MethodPost, base+"/finalize", "")
	decodeBody(t, rec, &fin)
	assert.True(t, fin.Tracking.Replan)
	assert.Equal(t, []string{"s2"}, fin.FlaggedForReview)

	rec = do(e, http.MethodGet, "/v1/events/ev/tracking/reviews", "")
	var reviews struct {
		Sessions []struct {
			SessionID string `json:"session_id"`
		} `json:"sessions"`
	}
	decodeBody(t, rec, &reviews)
	require.Len(t, reviews.Sessions, 1)
	assert.Equal(t, "s2", reviews.Sessions[0].SessionID)

	rec = do(e, http.MethodPost, "/v1/events/ev/tracking/reviews/s2/ack", "")
	assert.JSONEq(t, `{"session_id":"s2","cleared":1}`, rec.Body.String())
}

func TestDeleteSession(t *testing.T) {
	e := newServer(t, utils.RolePlanner)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/events/ev/sessions", sessionBody).Code)

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, base, "").Code)
}

func TestGeometryPreviews(t *testing.T) {
	e := echo.New()
	e.GET("/round", RoundPreview)
	e.GET("/rectangle", RectanglePreview)

	rec := do(e, http.MethodGet, "/round?seats=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var table model.Table
	decodeBody(t, rec, &table)
	assert.Equal(t, "preview", table.ID)
	require.Len(t, table.Seats, 3)
	assert.Equal(t, []string{"preview-seat-1", "preview-seat-2"}, table.Seats[0].AdjacentSeats)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/round", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/round?seats=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/round?seats=501", "").Code)

	rec = do(e, http.MethodGet, "/rectangle?top=2&bottom=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &table)
	assert.Len(t, table.Seats, 4)
	require.NotNil(t, table.Sides)
	assert.Equal(t, 2, table.Sides.Top)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rectangle", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rectangle?top=-1&left=3", "").Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/plain", Health(nil))
	e.GET("/checked", Health(map[string]Check{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	rec := do(e, http.MethodGet, "/plain", "")
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(e, http.MethodGet, "/checked", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"Service Unavailable","checks":{"db":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestNewPlannerHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewPlannerHandler(nil) })
}
