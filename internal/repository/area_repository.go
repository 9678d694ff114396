package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openmow/mower-fleet/internal/geo"
	"github.com/openmow/mower-fleet/internal/model"
)

// AreaRepo persists mowing areas and their nested polygon geometry.  The
// tree shape (area -> boundary points, area -> nogo zones -> points) is
// flattened into the points table plus two join tables that carry an
// explicit seq_no per membership row.  Point rows are occurrence-owned: a
// coordinate appearing in two polygons is stored twice, so a point row never
// belongs to more than one polygon context.
type AreaRepo struct{ DB *sql.DB }

func NewAreaRepo(db *sql.DB) *AreaRepo { return &AreaRepo{DB: db} }

// Create inserts an area with its full geometry in one transaction.  Any
// failure rolls the whole area back; readers never observe a partial area.
// On success the generated id is stored on area and returned.
func (r *AreaRepo) Create(ctx context.Context, area *model.Area) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO areas (owner_id, name, notes) VALUES (?,?,?)",
		area.OwnerID, area.Name, area.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert area: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	areaID := uint64(id)

	for seq, p := range area.Boundary {
		pointID, err := insertPointTx(ctx, tx, p)
		if err != nil {
			return 0, fmt.Errorf("insert boundary point %d: %w", seq, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO area_points (point_id, area_id, seq_no) VALUES (?,?,?)",
			pointID, areaID, seq); err != nil {
			return 0, fmt.Errorf("link boundary point %d: %w", seq, err)
		}
	}

	for zi, zone := range area.NogoZones {
		res, err := tx.ExecContext(ctx, "INSERT INTO nogo_zones (area_id) VALUES (?)", areaID)
		if err != nil {
			return 0, fmt.Errorf("insert nogo zone %d: %w", zi, err)
		}
		nid, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for seq, p := range zone {
			pointID, err := insertPointTx(ctx, tx, p)
			if err != nil {
				return 0, fmt.Errorf("insert nogo zone %d point %d: %w", zi, seq, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO nogo_points (point_id, nogo_id, seq_no) VALUES (?,?,?)",
				pointID, uint64(nid), seq); err != nil {
				return 0, fmt.Errorf("link nogo zone %d point %d: %w", zi, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	area.ID = areaID
	return areaID, nil
}

// insertPointTx stores one coordinate in its text-encoded form and returns
// the generated point id.
func insertPointTx(ctx context.Context, tx *sql.Tx, p geo.Point) (uint64, error) {
	x, y, z := geo.EncodePoint(p)
	res, err := tx.ExecContext(ctx, "INSERT INTO points (x, y, z) VALUES (?,?,?)", x, y, z)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByOwner returns every area owned by the user, ascending by area id,
// with boundary and nogo-zone point lists reconstructed in their original
// order.  Polygons are rebuilt by joining through the membership tables
// ordered by seq_no, so the returned lists equal what Create was given in
// both value and order.
func (r *AreaRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Area, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, notes FROM areas WHERE owner_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]model.Area, 0)
	for rows.Next() {
		a := model.Area{OwnerID: ownerID}
		var notes sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &notes); err != nil {
			return nil, err
		}
		a.Notes = notes.String
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range areas {
		boundary, err := r.polygon(ctx,
			`SELECT p.x, p.y, p.z FROM area_points ap
			 JOIN points p ON p.id = ap.point_id
			 WHERE ap.area_id=? ORDER BY ap.seq_no`, areas[i].ID)
		if err != nil {
			return nil, fmt.Errorf("area %d boundary: %w", areas[i].ID, err)
		}
		areas[i].Boundary = boundary

		zones, err := r.nogoZones(ctx, areas[i].ID)
		if err != nil {
			return nil, fmt.Errorf("area %d nogo zones: %w", areas[i].ID, err)
		}
		areas[i].NogoZones = zones
	}
	return areas, nil
}

// nogoZones loads all exclusion polygons of an area in creation order.
func (r *AreaRepo) nogoZones(ctx context.Context, areaID uint64) ([][]geo.Point, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM nogo_zones WHERE area_id=? ORDER BY id", areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	zones := make([][]geo.Point, 0, len(ids))
	for _, id := range ids {
		zone, err := r.polygon(ctx,
			`SELECT p.x, p.y, p.z FROM nogo_points np
			 JOIN points p ON p.id = np.point_id
			 WHERE np.nogo_id=? ORDER BY np.seq_no`, id)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, nil
}

// polygon runs an ordered point query and decodes the rows back to floats.
func (r *AreaRepo) polygon(ctx context.Context, query string, id uint64) ([]geo.Point, error) {
	rows, err := r.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pts := make([]geo.Point, 0)
	for rows.Next() {
		var x, y, z string
		if err := rows.Scan(&x, &y, &z); err != nil {
			return nil, err
		}
		p, err := geo.DecodePoint(x, y, z)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, rows.Err()
}
