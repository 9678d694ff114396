package model

import "github.com/openmow/mower-fleet/internal/geo"

// Area is a user-owned mowable region: an ordered boundary polygon plus zero
// or more excluded (nogo) polygons.  Point order within the boundary and
// within each nogo zone describes the path the mower follows and must
// round-trip through storage exactly; the repository persists an explicit
// sequence number per point to guarantee that.
//
// Fields:
//  ID        – areas.id, assigned on insert.
//  OwnerID   – areas.owner_id, the owning user.
//  Name      – areas.name.
//  Notes     – areas.notes (may be empty).
//  Boundary  – ordered boundary polygon, length >= 0.
//  NogoZones – excluded polygons in creation order, each ordered, each
//              length >= 0.
type Area struct {
	ID        uint64
	OwnerID   uint64
	Name      string
	Notes     string
	Boundary  []geo.Point
	NogoZones [][]geo.Point
}
