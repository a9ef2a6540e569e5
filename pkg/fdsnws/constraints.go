package fdsnws

import "strings"

// Constraints accumulates query parameters for one constraint group.
// Setting a key that already holds a value appends the new value after a
// comma. Keys keep the order in which they were first set.
type Constraints struct {
	keys   []string
	values map[string]string
}

func newConstraints() *Constraints {
	return &Constraints{values: make(map[string]string)}
}

// Set records value under key, merging with any earlier value.
func (c *Constraints) Set(key, value string) {
	prev, seen := c.values[key]
	if !seen {
		c.keys = append(c.keys, key)
	}
	if prev != "" {
		c.values[key] = prev + "," + value
		return
	}
	c.values[key] = value
}

// Get returns the accumulated value for key.
func (c *Constraints) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the recorded keys in insertion order.
func (c *Constraints) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Build serializes the group as key=value pairs joined by '&'.
// Keys without a value are skipped; an empty group yields "".
func (c *Constraints) Build() string {
	if len(c.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range c.keys {
		v := c.values[k]
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeComponent(v))
	}
	return b.String()
}

// group binds a parameter set to the builder that owns it.
type group[T any] struct {
	c *Constraints
	b *QueryBuilder[T]
}

func (g group[T]) set(key string, v any) *QueryBuilder[T] {
	g.c.Set(key, FormatValue(v))
	return g.b
}

// TimeConstraints restricts results by start and end times.
// Arguments may be strings, time.Time values or anything FormatValue accepts.
type TimeConstraints[T any] struct{ group[T] }

// StartAfter selects data that starts after date.
func (g TimeConstraints[T]) StartAfter(date any) *QueryBuilder[T] { return g.set("startafter", date) }

// StartBefore selects data that starts before date.
func (g TimeConstraints[T]) StartBefore(date any) *QueryBuilder[T] { return g.set("startbefore", date) }

// EndAfter selects data that ends after date.
func (g TimeConstraints[T]) EndAfter(date any) *QueryBuilder[T] { return g.set("endafter", date) }

// EndBefore selects data that ends before date.
func (g TimeConstraints[T]) EndBefore(date any) *QueryBuilder[T] { return g.set("endbefore", date) }

// StartTime selects data on or after date.
func (g TimeConstraints[T]) StartTime(date any) *QueryBuilder[T] { return g.set("starttime", date) }

// EndTime selects data on or before date.
func (g TimeConstraints[T]) EndTime(date any) *QueryBuilder[T] { return g.set("endtime", date) }

// CircleConstraints select data around a point. Radii are in degrees.
type CircleConstraints[T any] struct{ group[T] }

func (g CircleConstraints[T]) Latitude(lat any) *QueryBuilder[T] { return g.set("latitude", lat) }
func (g CircleConstraints[T]) Longitude(lon any) *QueryBuilder[T] { return g.set("longitude", lon) }
func (g CircleConstraints[T]) MaxRadius(radius any) *QueryBuilder[T] { return g.set("maxradius", radius) }
func (g CircleConstraints[T]) MinRadius(radius any) *QueryBuilder[T] { return g.set("minradius", radius) }

// BoxConstraints select data inside a latitude/longitude rectangle.
type BoxConstraints[T any] struct{ group[T] }

func (g BoxConstraints[T]) MaxLatitude(lat any) *QueryBuilder[T] { return g.set("maxlatitude", lat) }
func (g BoxConstraints[T]) MinLatitude(lat any) *QueryBuilder[T] { return g.set("minlatitude", lat) }
func (g BoxConstraints[T]) MaxLongitude(lon any) *QueryBuilder[T] { return g.set("maxlongitude", lon) }
func (g BoxConstraints[T]) MinLongitude(lon any) *QueryBuilder[T] { return g.set("minlongitude", lon) }

// ChannelConstraints select by network, station, location and channel code.
// Codes are passed through verbatim, so server-side wildcards such as "B?"
// or "H??" work as expected.
type ChannelConstraints[T any] struct{ group[T] }

func (g ChannelConstraints[T]) Network(code string) *QueryBuilder[T] { return g.set("network", code) }
func (g ChannelConstraints[T]) Station(code string) *QueryBuilder[T] { return g.set("station", code) }
func (g ChannelConstraints[T]) Location(code string) *QueryBuilder[T] { return g.set("location", code) }

// Code sets the channel code.
func (g ChannelConstraints[T]) Code(code string) *QueryBuilder[T] { return g.set("channel", code) }

// StationConstraints are specific to the station service. SeisComP does not
// support updatedafter, so it is not offered.
type StationConstraints[T any] struct{ group[T] }

// ExcludeRestrictedChannels drops restricted channels from the response.
func (g StationConstraints[T]) ExcludeRestrictedChannels() *QueryBuilder[T] {
	return g.set("includerestricted", "false")
}

// IncludeAvailability asks for data availability information.
func (g StationConstraints[T]) IncludeAvailability() *QueryBuilder[T] {
	return g.set("includeavailability", "true")
}

func (g StationConstraints[T]) MatchTimeSeries() *QueryBuilder[T] {
	return g.set("matchtimeseries", "true")
}

// Level sets the level of detail: network, station, channel or response.
func (g StationConstraints[T]) Level(level string) *QueryBuilder[T] { return g.set("level", level) }

// EventConstraints are the event service vocabulary.
type EventConstraints[T any] struct{ group[T] }

func (g EventConstraints[T]) MinMagnitude(m any) *QueryBuilder[T] { return g.set("minmagnitude", m) }
func (g EventConstraints[T]) MaxMagnitude(m any) *QueryBuilder[T] { return g.set("maxmagnitude", m) }
func (g EventConstraints[T]) MagnitudeType(t string) *QueryBuilder[T] { return g.set("magnitudetype", t) }

// MinDepth and MaxDepth are in kilometers.
func (g EventConstraints[T]) MinDepth(km any) *QueryBuilder[T] { return g.set("mindepth", km) }
func (g EventConstraints[T]) MaxDepth(km any) *QueryBuilder[T] { return g.set("maxdepth", km) }
func (g EventConstraints[T]) EventType(t string) *QueryBuilder[T] { return g.set("eventtype", t) }
func (g EventConstraints[T]) EventID(id string) *QueryBuilder[T] { return g.set("eventid", id) }
func (g EventConstraints[T]) OrderBy(order string) *QueryBuilder[T] { return g.set("orderby", order) }
func (g EventConstraints[T]) Limit(n int) *QueryBuilder[T] { return g.set("limit", n) }
func (g EventConstraints[T]) Offset(n int) *QueryBuilder[T] { return g.set("offset", n) }
func (g EventConstraints[T]) IncludeAllOrigins() *QueryBuilder[T] {
	return g.set("includeallorigins", "true")
}
func (g EventConstraints[T]) IncludeAllMagnitudes() *QueryBuilder[T] {
	return g.set("includeallmagnitudes", "true")
}
func (g EventConstraints[T]) IncludeArrivals() *QueryBuilder[T] {
	return g.set("includearrivals", "true")
}

// DataselectConstraints are the dataselect service vocabulary.
type DataselectConstraints[T any] struct{ group[T] }

// Quality selects the data quality (D, R, Q, M or B).
func (g DataselectConstraints[T]) Quality(q string) *QueryBuilder[T] { return g.set("quality", q) }

// MinimumLength drops segments shorter than seconds.
func (g DataselectConstraints[T]) MinimumLength(seconds any) *QueryBuilder[T] {
	return g.set("minimumlength", seconds)
}

func (g DataselectConstraints[T]) LongestOnly() *QueryBuilder[T] {
	return g.set("longestonly", "true")
}
