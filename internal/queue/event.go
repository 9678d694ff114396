// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// TelemetryReceivedEvent is published for every accepted position fix.  It
// carries enough information for downstream consumers (logging, live maps,
// analytics) without querying the primary database.
type TelemetryReceivedEvent struct {
	Mower  string  `json:"mower"`
	RecvAt string  `json:"recv_at"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}
