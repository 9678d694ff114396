package model

import (
	"time"

	"github.com/openmow/mower-fleet/internal/geo"
)

// Mower is a registered robotic mower.  Mowers are addressed by their
// iSCSI-style qualified name (IQN) and reached over the fleet VPN.
type Mower struct {
	IQN     string // mowers.iqn, primary key
	VPNIP   string // mowers.vpn_ip
	OwnerID uint64 // mowers.owner_id
}

// TelemetryFix is one reported mower position.  The coordinate itself lives
// in the points table and is joined back on read.
type TelemetryFix struct {
	Mower  string    // telemetry.mower (IQN)
	RecvAt time.Time // telemetry.recv_at
	Coord  geo.Point // joined from points via telemetry.point_id
}
