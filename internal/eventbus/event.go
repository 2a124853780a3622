// Package eventbus implements the event log: an append-only, typed event
// stream shared by the mobility core (producer), the exposure bus
// (consumer/filter), and the placement controller (consumer, via the
// control-plane API).
package eventbus

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/model"
)

// Kind identifies the tagged union branch of an Event.
type Kind string

const (
	KindPdnConnection    Kind = model.EventKindPdnConnection
	KindLocationReporting Kind = model.EventKindLocationReporting
)

// PdnStatus is the status of a PdnConnection event.
type PdnStatus string

const (
	PdnCreated  PdnStatus = model.PdnStatusCreated
	PdnReleased PdnStatus = model.PdnStatusReleased
)

// LdrType is the location-reporting subtype of a LocationReporting event.
type LdrType string

const (
	LdrEnteringArea LdrType = model.LdrTypeEnteringArea
	LdrLeavingArea  LdrType = model.LdrTypeLeavingArea
	LdrMotion       LdrType = model.LdrTypeMotion
)

// Event is a single typed record appended to the event log.
type Event struct {
	Kind      Kind
	UserID    uint32
	Timestamp time.Time

	// PdnConnection fields
	PdnStatus PdnStatus
	IPv4      string

	// LocationReporting fields
	CellID  uint32
	Geo     geo.Point
	LdrType LdrType
}

// NewPdnConnection builds a PdnConnection event.
func NewPdnConnection(userID uint32, status PdnStatus, ipv4 string, ts time.Time) Event {
	return Event{Kind: KindPdnConnection, UserID: userID, PdnStatus: status, IPv4: ipv4, Timestamp: ts}
}

// NewLocationReporting builds a LocationReporting event.
func NewLocationReporting(userID uint32, cellID uint32, pos geo.Point, ldr LdrType, ts time.Time) Event {
	return Event{Kind: KindLocationReporting, UserID: userID, CellID: cellID, Geo: pos, LdrType: ldr, Timestamp: ts}
}

// Fingerprint returns a stable hash of the event covering all fields except
// wall-clock noise below millisecond resolution, so that the same logical
// event always dedups to the same key regardless of sub-millisecond jitter
// introduced by re-serialization.
func (e Event) Fingerprint() uint64 {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(e.UserID), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(e.Timestamp.UnixMilli(), 10))
	switch e.Kind {
	case KindPdnConnection:
		b.WriteByte(':')
		b.WriteString(string(e.PdnStatus))
		b.WriteByte(':')
		b.WriteString(e.IPv4)
	case KindLocationReporting:
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(e.CellID), 10))
		b.WriteByte(':')
		b.WriteString(string(e.LdrType))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(e.Geo.X, 'f', -1, 64))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(e.Geo.Y, 'f', -1, 64))
	}
	return xxh3.HashString(b.String())
}

// FingerprintHex returns Fingerprint formatted as a lowercase hex string
// without zero padding, used as the dedup key by the ExposureBus and stored
// in the indexed fingerprint column of the events table.
func (e Event) FingerprintHex() string {
	return strconv.FormatUint(e.Fingerprint(), 16)
}

// ToWire converts the event to its JSON wire shape.
func (e Event) ToWire() model.Event {
	w := model.Event{
		Kind:        string(e.Kind),
		UserID:      e.UserID,
		TimestampNs: e.Timestamp.UnixNano(),
	}
	switch e.Kind {
	case KindPdnConnection:
		w.Payload.Status = string(e.PdnStatus)
		w.Payload.IPv4 = e.IPv4
	case KindLocationReporting:
		w.Payload.CellID = e.CellID
		w.Payload.GeoX = e.Geo.X
		w.Payload.GeoY = e.Geo.Y
		w.Payload.LdrType = string(e.LdrType)
	}
	return w
}
