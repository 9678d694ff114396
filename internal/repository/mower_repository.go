package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/openmow/mower-fleet/internal/geo"
	"github.com/openmow/mower-fleet/internal/model"
)

// MowerRepo manages the mower registry and per-mower telemetry.  Telemetry
// coordinates reuse the points table, one row per reported fix.
type MowerRepo struct{ DB *sql.DB }

func NewMowerRepo(db *sql.DB) *MowerRepo { return &MowerRepo{DB: db} }

// Register adds a mower to the fleet under the given owner.
func (r *MowerRepo) Register(ctx context.Context, ownerID uint64, iqn, vpnIP string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO mowers (iqn, vpn_ip, owner_id) VALUES (?,?,?)",
		iqn, vpnIP, ownerID)
	if err != nil {
		var merr *mysql.MySQLError
		if errors.As(err, &merr) && merr.Number == mysqlErrDuplicate {
			return ErrDuplicateMower
		}
		return err
	}
	return nil
}

// ListByOwner returns the user's mowers ordered by IQN.
func (r *MowerRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Mower, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT iqn, vpn_ip, owner_id FROM mowers WHERE owner_id=? ORDER BY iqn", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mowers := make([]model.Mower, 0)
	for rows.Next() {
		var m model.Mower
		if err := rows.Scan(&m.IQN, &m.VPNIP, &m.OwnerID); err != nil {
			return nil, err
		}
		mowers = append(mowers, m)
	}
	return mowers, rows.Err()
}

// AppendTelemetry records one position fix for a mower.  The coordinate row
// and the telemetry row are written in a single transaction so a fix is
// either fully stored or not at all.
func (r *MowerRepo) AppendTelemetry(ctx context.Context, iqn string, recvAt time.Time, p geo.Point) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pointID, err := insertPointTx(ctx, tx, p)
	if err != nil {
		return fmt.Errorf("insert telemetry point: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO telemetry (mower, recv_at, point_id) VALUES (?,?,?)",
		iqn, recvAt.UTC().Truncate(time.Second), pointID); err != nil {
		return fmt.Errorf("insert telemetry row: %w", err)
	}
	return tx.Commit()
}

// RecentTrack returns the mower's latest fixes, newest first.
func (r *MowerRepo) RecentTrack(ctx context.Context, iqn string, limit int) ([]model.TelemetryFix, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.recv_at, p.x, p.y, p.z FROM telemetry t
		 JOIN points p ON p.id = t.point_id
		 WHERE t.mower=? ORDER BY t.recv_at DESC LIMIT ?`,
		iqn, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	track := make([]model.TelemetryFix, 0)
	for rows.Next() {
		fix := model.TelemetryFix{Mower: iqn}
		var x, y, z string
		if err := rows.Scan(&fix.RecvAt, &x, &y, &z); err != nil {
			return nil, err
		}
		coord, err := geo.DecodePoint(x, y, z)
		if err != nil {
			return nil, err
		}
		fix.Coord = coord
		track = append(track, fix)
	}
	return track, rows.Err()
}
