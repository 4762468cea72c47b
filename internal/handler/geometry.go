package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-planner/internal/geometry"
	"github.com/iliyamo/seating-planner/internal/model"
)

// maxPreviewSeats bounds the tables the public preview will build.
const maxPreviewSeats = 500

const previewTableID = "preview"

// RoundPreview handles GET /v1/geometry/round?seats=N and returns the
// table a planner would get, adjacency included.
func RoundPreview(c echo.Context) error {
	var seats int
	if err := echo.QueryParamsBinder(c).MustInt("seats", &seats).BindError(); err != nil {
		return respondError(c, badRequest("seats must be an integer"))
	}
	if seats < 1 || seats > maxPreviewSeats {
		return respondError(c, badRequest("seats must be between 1 and 500"))
	}
	t := geometry.CreateRoundTable(geometry.RoundTableOptions{ID: previewTableID, SeatCount: seats})
	return c.JSON(http.StatusOK, t)
}

// RectanglePreview handles GET /v1/geometry/rectangle with top, right,
// bottom and left seat counts.  Missing sides count as zero.
func RectanglePreview(c echo.Context) error {
	var sides model.RectangleSides
	err := echo.QueryParamsBinder(c).
		Int("top", &sides.Top).
		Int("right", &sides.Right).
		Int("bottom", &sides.Bottom).
		Int("left", &sides.Left).
		BindError()
	if err != nil {
		return respondError(c, badRequest("side counts must be integers"))
	}
	if sides.Top < 0 || sides.Right < 0 || sides.Bottom < 0 || sides.Left < 0 {
		return respondError(c, badRequest("side counts must not be negative"))
	}
	if n := sides.Total(); n < 1 || n > maxPreviewSeats {
		return respondError(c, badRequest("table must have between 1 and 500 seats"))
	}
	t := geometry.CreateRectangleTable(geometry.RectangleTableOptions{ID: previewTableID, Sides: sides})
	return c.JSON(http.StatusOK, t)
}
