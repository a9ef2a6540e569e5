package fdsnws

import (
	"context"
	"slices"
	"strings"
)

// Capability names a family of constraints a service accepts.
type Capability string

const (
	CapTime         Capability = "time"
	CapGeographical Capability = "geographical"
	CapChannel      Capability = "channel"
	CapStation      Capability = "station"
	CapEvent        Capability = "event"
	CapDataselect   Capability = "dataselect"
)

// GroupName identifies one constraint group inside a builder.
type GroupName int

const (
	GroupTime GroupName = iota
	GroupCircle
	GroupBox
	GroupChannel
	GroupStation
	GroupEvent
	GroupDataselect
	groupCount
)

var groupNames = [groupCount]string{"time", "circle", "box", "channel", "station", "event", "dataselect"}

func (g GroupName) String() string {
	if g < 0 || g >= groupCount {
		return "unknown"
	}
	return groupNames[g]
}

// capabilityGroups maps each capability to the groups it enables.
var capabilityGroups = map[Capability][]GroupName{
	CapTime:         {GroupTime},
	CapGeographical: {GroupCircle, GroupBox},
	CapChannel:      {GroupChannel},
	CapStation:      {GroupStation},
	CapEvent:        {GroupEvent},
	CapDataselect:   {GroupDataselect},
}

var groupCapability = func() [groupCount]Capability {
	var out [groupCount]Capability
	for capName, groups := range capabilityGroups {
		for _, g := range groups {
			out[g] = capName
		}
	}
	return out
}()

// BaseQuery is prepended to every query produced by a builder.
const BaseQuery = "format=sc3ml&nodata=404"

// FinishFunc sends a serialized query and decodes the result.
type FinishFunc[T any] func(ctx context.Context, query string) (T, error)

// QueryBuilder composes constraint groups into one FDSNWS query string.
// A builder serves a single query: it is not safe for concurrent use and
// Finish may be called only once.
type QueryBuilder[T any] struct {
	caps     []Capability
	groups   [groupCount]*Constraints
	order    []GroupName
	finish   FinishFunc[T]
	err      error
	consumed bool
}

// NewQueryBuilder creates a builder with the groups of the given
// capabilities. Groups are serialized in the order their capabilities are
// listed. Unknown capability names are ignored.
func NewQueryBuilder[T any](caps []Capability, finish FinishFunc[T]) *QueryBuilder[T] {
	b := &QueryBuilder[T]{finish: finish}
	for _, c := range caps {
		groups, ok := capabilityGroups[c]
		if !ok {
			continue
		}
		if !slices.Contains(b.caps, c) {
			b.caps = append(b.caps, c)
		}
		for _, g := range groups {
			if b.groups[g] == nil {
				b.groups[g] = newConstraints()
				b.order = append(b.order, g)
			}
		}
	}
	return b
}

// Has reports whether the capability was enabled for this builder.
func (b *QueryBuilder[T]) Has(c Capability) bool {
	return slices.Contains(b.caps, c)
}

// Group returns the parameters of a group, or false if it is not enabled.
func (b *QueryBuilder[T]) Group(g GroupName) (*Constraints, bool) {
	if g < 0 || g >= groupCount || b.groups[g] == nil {
		return nil, false
	}
	return b.groups[g], true
}

// Err returns the first misuse recorded on the builder.
func (b *QueryBuilder[T]) Err() error { return b.err }

// bind returns the group's parameters. A disabled group gets a detached
// parameter set whose values are never sent, and the misuse is recorded so
// Finish fails.
func (b *QueryBuilder[T]) bind(g GroupName) group[T] {
	if c := b.groups[g]; c != nil {
		return group[T]{c: c, b: b}
	}
	if b.err == nil {
		b.err = &CapabilityError{Capability: groupCapability[g], Group: g}
	}
	return group[T]{c: newConstraints(), b: b}
}

// Time constraints.
func (b *QueryBuilder[T]) Time() TimeConstraints[T] { return TimeConstraints[T]{b.bind(GroupTime)} }

// Circle constraints (geographical).
func (b *QueryBuilder[T]) Circle() CircleConstraints[T] {
	return CircleConstraints[T]{b.bind(GroupCircle)}
}

// Box constraints (geographical).
func (b *QueryBuilder[T]) Box() BoxConstraints[T] { return BoxConstraints[T]{b.bind(GroupBox)} }

// Channel constraints: network, station, location and channel codes.
func (b *QueryBuilder[T]) Channel() ChannelConstraints[T] {
	return ChannelConstraints[T]{b.bind(GroupChannel)}
}

// Station constraints, only enabled on the station service.
func (b *QueryBuilder[T]) Station() StationConstraints[T] {
	return StationConstraints[T]{b.bind(GroupStation)}
}

func (b *QueryBuilder[T]) Event() EventConstraints[T] {
	return EventConstraints[T]{b.bind(GroupEvent)}
}

func (b *QueryBuilder[T]) Dataselect() DataselectConstraints[T] {
	return DataselectConstraints[T]{b.bind(GroupDataselect)}
}

// Query returns the serialized query: the base parameters followed by every
// non-empty enabled group.
func (b *QueryBuilder[T]) Query() string {
	parts := []string{BaseQuery}
	for _, g := range b.order {
		if s := b.groups[g].Build(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "&")
}

// Finish sends the query through the finish function and returns its result
// unchanged. It fails without sending if a disabled group was used.
func (b *QueryBuilder[T]) Finish(ctx context.Context) (T, error) {
	var zero T
	if b.consumed {
		return zero, ErrBuilderConsumed
	}
	b.consumed = true
	if b.err != nil {
		return zero, b.err
	}
	return b.finish(ctx, b.Query())
}
