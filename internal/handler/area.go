package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmow/mower-fleet/internal/geo"
	"github.com/openmow/mower-fleet/internal/middleware"
	"github.com/openmow/mower-fleet/internal/model"
	"github.com/openmow/mower-fleet/internal/repository"
)

// AreaHandler exposes mowing-area creation and retrieval.  Geometry crosses
// the wire as [x, y, z] triples, matching the mower clients.
type AreaHandler struct {
	Areas *repository.AreaRepo
}

func NewAreaHandler(a *repository.AreaRepo) *AreaHandler {
	return &AreaHandler{Areas: a}
}

type areaReq struct {
	Name      string         `json:"name"`
	Notes     string         `json:"notes"`
	Boundary  [][3]float64   `json:"area_coords"`
	NogoZones [][][3]float64 `json:"nogo_zones"`
}

type areaResp struct {
	ID        uint64         `json:"id"`
	Name      string         `json:"name"`
	Notes     string         `json:"notes"`
	Boundary  [][3]float64   `json:"area_coords"`
	NogoZones [][][3]float64 `json:"nogo_zones"`
}

// AddArea stores a new area for the authenticated user.
func (h *AreaHandler) AddArea(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req areaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	area := model.Area{
		OwnerID:   user.ID,
		Name:      req.Name,
		Notes:     req.Notes,
		Boundary:  triplesToPoints(req.Boundary),
		NogoZones: make([][]geo.Point, 0, len(req.NogoZones)),
	}
	for _, zone := range req.NogoZones {
		area.NogoZones = append(area.NogoZones, triplesToPoints(zone))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Areas.Create(ctx, &area); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create area failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": fmt.Sprintf("Area '%s' added", area.Name)})
}

// GetAreas lists every area owned by the authenticated user, geometry in the
// exact order it was created.
func (h *AreaHandler) GetAreas(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	areas, err := h.Areas.ListByOwner(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list areas failed"})
	}

	out := make([]areaResp, 0, len(areas))
	for _, a := range areas {
		resp := areaResp{
			ID:        a.ID,
			Name:      a.Name,
			Notes:     a.Notes,
			Boundary:  pointsToTriples(a.Boundary),
			NogoZones: make([][][3]float64, 0, len(a.NogoZones)),
		}
		for _, zone := range a.NogoZones {
			resp.NogoZones = append(resp.NogoZones, pointsToTriples(zone))
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

func triplesToPoints(ts [][3]float64) []geo.Point {
	pts := make([]geo.Point, 0, len(ts))
	for _, t := range ts {
		pts = append(pts, geo.Point{X: t[0], Y: t[1], Z: t[2]})
	}
	return pts
}

func pointsToTriples(pts []geo.Point) [][3]float64 {
	ts := make([][3]float64, 0, len(pts))
	for _, p := range pts {
		ts = append(ts, [3]float64{p.X, p.Y, p.Z})
	}
	return ts
}
