// Package models defines the hub-side scouting record envelope.
package models

// Record is one scouting submission as stored by the hub. The payload is an
// opaque serialized document; the hub never inspects its fields except in the
// CSV export path.
type Record struct {
	ID        string
	Payload   string
	Synced    bool
	CreatedAt int64 // unix milliseconds, set at first insert
}
