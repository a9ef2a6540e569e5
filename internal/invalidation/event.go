// Package invalidation defines the inventory change events that evict cached
// FDSNWS responses.
package invalidation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

var ErrInvalidEvent = errors.New("invalidation: invalid event")

// Event announces that the inventory of a network changed upstream.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Network string    `json:"network"`
	Station string    `json:"station,omitempty"`
	TS      time.Time `json:"ts"`
	// Seq orders events of one network. Zero disables replay detection.
	Seq    uint64 `json:"seq,omitempty"`
	Source string `json:"source,omitempty"`
}

func Decode(b []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: json decode: %w", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	ev.Network = strings.ToUpper(strings.TrimSpace(ev.Network))
	return ev, nil
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("%w: version must be 1", ErrInvalidEvent)
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("%w: op must be insert|update|delete", ErrInvalidEvent)
	}
	net := strings.TrimSpace(e.Network)
	if net == "" {
		return fmt.Errorf("%w: network is required", ErrInvalidEvent)
	}
	if strings.ContainsAny(net, "*?,") {
		return fmt.Errorf("%w: network must be a single code, got %q", ErrInvalidEvent, net)
	}
	if e.TS.IsZero() {
		return fmt.Errorf("%w: ts is required", ErrInvalidEvent)
	}
	return nil
}
