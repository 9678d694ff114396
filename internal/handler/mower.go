package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmow/mower-fleet/internal/geo"
	"github.com/openmow/mower-fleet/internal/middleware"
	"github.com/openmow/mower-fleet/internal/queue"
	"github.com/openmow/mower-fleet/internal/repository"
	"github.com/openmow/mower-fleet/internal/service"
)

// MowerHandler exposes the mower registry and telemetry ingest.  Accepted
// telemetry is additionally published to the message broker for downstream
// consumers; publish failures are ignored so a broker outage never loses a
// fix that the database already holds.
type MowerHandler struct {
	Mowers *repository.MowerRepo
}

func NewMowerHandler(m *repository.MowerRepo) *MowerHandler {
	return &MowerHandler{Mowers: m}
}

type registerMowerReq struct {
	IQN   string `json:"iqn"`
	VPNIP string `json:"vpn_ip"`
}

type telemetryReq struct {
	IQN    string     `json:"iqn"`
	RecvAt string     `json:"recv_at"` // RFC3339; empty means "now"
	Coord  [3]float64 `json:"coord"`
}

// RegisterMower adds a mower to the authenticated user's fleet.
func (h *MowerHandler) RegisterMower(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req registerMowerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.IQN = strings.TrimSpace(req.IQN)
	req.VPNIP = strings.TrimSpace(req.VPNIP)
	if req.IQN == "" || req.VPNIP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "iqn and vpn_ip are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Mowers.Register(ctx, user.ID, req.IQN, req.VPNIP); err != nil {
		if errors.Is(err, repository.ErrDuplicateMower) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "mower already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register mower failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": "mower registered"})
}

// GetMowers lists the authenticated user's mowers.
func (h *MowerHandler) GetMowers(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mowers, err := h.Mowers.ListByOwner(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list mowers failed"})
	}

	out := make([]echo.Map, 0, len(mowers))
	for _, m := range mowers {
		out = append(out, echo.Map{"iqn": m.IQN, "vpn_ip": m.VPNIP})
	}
	return c.JSON(http.StatusOK, out)
}

// AppendTelemetry records one position fix and publishes a
// telemetry.received event.
func (h *MowerHandler) AppendTelemetry(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req telemetryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.IQN = strings.TrimSpace(req.IQN)
	if req.IQN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "iqn is required"})
	}

	recvAt := time.Now().UTC()
	if req.RecvAt != "" {
		t, err := time.Parse(time.RFC3339, req.RecvAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "recv_at must be RFC3339"})
		}
		recvAt = t.UTC()
	}
	coord := geo.Point{X: req.Coord[0], Y: req.Coord[1], Z: req.Coord[2]}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Mowers.AppendTelemetry(ctx, req.IQN, recvAt, coord); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store telemetry failed"})
	}

	_ = service.PublishTelemetryReceived(ctx, queue.TelemetryReceivedEvent{
		Mower:  req.IQN,
		RecvAt: recvAt.Format(time.RFC3339),
		X:      coord.X,
		Y:      coord.Y,
		Z:      coord.Z,
	})

	return c.JSON(http.StatusCreated, echo.Map{"success": "telemetry recorded"})
}

// GetTrack returns a mower's most recent fixes, newest first.  The optional
// ?limit= parameter caps the number of fixes (default 100).
func (h *MowerHandler) GetTrack(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	iqn := c.Param("iqn")
	limit := 100
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	track, err := h.Mowers.RecentTrack(ctx, iqn, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load track failed"})
	}

	out := make([]echo.Map, 0, len(track))
	for _, fix := range track {
		out = append(out, echo.Map{
			"recv_at": fix.RecvAt.UTC().Format(time.RFC3339),
			"coord":   [3]float64{fix.Coord.X, fix.Coord.Y, fix.Coord.Z},
		})
	}
	return c.JSON(http.StatusOK, out)
}
