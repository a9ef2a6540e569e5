package router

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

type stationBuilder = fdsnws.QueryBuilder[[]fdsnws.Station]

// setter applies one wire value to a station builder.
type setter func(b *stationBuilder, v string) error

func text(f func(b *stationBuilder, v string)) setter {
	return func(b *stationBuilder, v string) error {
		f(b, v)
		return nil
	}
}

// number accepts only decimal values, which are passed on verbatim.
func number(f func(b *stationBuilder, v string)) setter {
	return func(b *stationBuilder, v string) error {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("not a number: %q", v)
		}
		f(b, v)
		return nil
	}
}

// flag maps a boolean wire value onto a setter that only exists for one
// polarity; the other polarity is the server default and sends nothing.
func flag(want bool, f func(b *stationBuilder)) setter {
	return func(b *stationBuilder, v string) error {
		got, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		if got == want {
			f(b)
		}
		return nil
	}
}

// stationParams maps FDSN station wire names, including the short aliases,
// onto builder setters.
var stationParams = map[string]setter{
	"network":  text(func(b *stationBuilder, v string) { b.Channel().Network(v) }),
	"net":      text(func(b *stationBuilder, v string) { b.Channel().Network(v) }),
	"station":  text(func(b *stationBuilder, v string) { b.Channel().Station(v) }),
	"sta":      text(func(b *stationBuilder, v string) { b.Channel().Station(v) }),
	"location": text(func(b *stationBuilder, v string) { b.Channel().Location(v) }),
	"loc":      text(func(b *stationBuilder, v string) { b.Channel().Location(v) }),
	"channel":  text(func(b *stationBuilder, v string) { b.Channel().Code(v) }),
	"cha":      text(func(b *stationBuilder, v string) { b.Channel().Code(v) }),

	"starttime":   text(func(b *stationBuilder, v string) { b.Time().StartTime(v) }),
	"start":       text(func(b *stationBuilder, v string) { b.Time().StartTime(v) }),
	"endtime":     text(func(b *stationBuilder, v string) { b.Time().EndTime(v) }),
	"end":         text(func(b *stationBuilder, v string) { b.Time().EndTime(v) }),
	"startbefore": text(func(b *stationBuilder, v string) { b.Time().StartBefore(v) }),
	"startafter":  text(func(b *stationBuilder, v string) { b.Time().StartAfter(v) }),
	"endbefore":   text(func(b *stationBuilder, v string) { b.Time().EndBefore(v) }),
	"endafter":    text(func(b *stationBuilder, v string) { b.Time().EndAfter(v) }),

	"latitude":  number(func(b *stationBuilder, v string) { b.Circle().Latitude(v) }),
	"lat":       number(func(b *stationBuilder, v string) { b.Circle().Latitude(v) }),
	"longitude": number(func(b *stationBuilder, v string) { b.Circle().Longitude(v) }),
	"lon":       number(func(b *stationBuilder, v string) { b.Circle().Longitude(v) }),
	"maxradius": number(func(b *stationBuilder, v string) { b.Circle().MaxRadius(v) }),
	"minradius": number(func(b *stationBuilder, v string) { b.Circle().MinRadius(v) }),

	"minlatitude":  number(func(b *stationBuilder, v string) { b.Box().MinLatitude(v) }),
	"minlat":       number(func(b *stationBuilder, v string) { b.Box().MinLatitude(v) }),
	"maxlatitude":  number(func(b *stationBuilder, v string) { b.Box().MaxLatitude(v) }),
	"maxlat":       number(func(b *stationBuilder, v string) { b.Box().MaxLatitude(v) }),
	"minlongitude": number(func(b *stationBuilder, v string) { b.Box().MinLongitude(v) }),
	"minlon":       number(func(b *stationBuilder, v string) { b.Box().MinLongitude(v) }),
	"maxlongitude": number(func(b *stationBuilder, v string) { b.Box().MaxLongitude(v) }),
	"maxlon":       number(func(b *stationBuilder, v string) { b.Box().MaxLongitude(v) }),

	"includerestricted":   flag(false, func(b *stationBuilder) { b.Station().ExcludeRestrictedChannels() }),
	"includeavailability": flag(true, func(b *stationBuilder) { b.Station().IncludeAvailability() }),
	"matchtimeseries":     flag(true, func(b *stationBuilder) { b.Station().MatchTimeSeries() }),
	"level":               text(func(b *stationBuilder, v string) { b.Station().Level(v) }),
}

// Parameters owned by the gateway rather than forwarded upstream.
const paramH3Res = "h3res"

var fixedParams = map[string]bool{"format": true, "nodata": true}

// stationRequest is a parsed /v1/stations query.
type stationRequest struct {
	h3res int // -1 when absent
}

// applyStationParams routes every query parameter to its builder setter.
// Keys are applied in sorted order and repeated values in request order.
func applyStationParams(b *stationBuilder, q url.Values) (stationRequest, error) {
	req := stationRequest{h3res: -1}

	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.ToLower(name)
		vals := q[name]
		switch {
		case key == paramH3Res:
			n, err := strconv.Atoi(vals[len(vals)-1])
			if err != nil || n < 0 || n > 15 {
				return req, fmt.Errorf("%s: must be an integer in [0,15]", paramH3Res)
			}
			req.h3res = n
			continue
		case fixedParams[key]:
			return req, fmt.Errorf("%s: fixed by the gateway", name)
		}

		set, ok := stationParams[key]
		if !ok {
			return req, fmt.Errorf("unknown parameter %q", name)
		}
		for _, v := range vals {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if err := set(b, v); err != nil {
				return req, fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return req, b.Err()
}
