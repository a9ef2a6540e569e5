// Package h3mapper places stations on the H3 grid.
package h3mapper

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

// CellForStation returns the H3 cell containing (lat, lon) in degrees.
func CellForStation(lat, lon float64, res int) (string, error) {
	if err := validateRes(res); err != nil {
		return "", err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("coordinates out of range: lat=%v lon=%v", lat, lon)
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, res)
	if err != nil {
		return "", fmt.Errorf("h3 cell: %w", err)
	}
	return c.String(), nil
}

// CellGroup is the set of stations falling into one cell.
type CellGroup struct {
	Cell     string           `json:"cell"`
	Stations []fdsnws.Station `json:"stations"`
}

// GroupByCell buckets stations by cell. Groups are sorted by cell and keep
// the input order of their stations.
func GroupByCell(stations []fdsnws.Station, res int) ([]CellGroup, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	idx := make(map[string]int)
	var out []CellGroup
	for _, st := range stations {
		cell, err := CellForStation(st.Latitude, st.Longitude, res)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", st.Code, err)
		}
		i, ok := idx[cell]
		if !ok {
			i = len(out)
			idx[cell] = i
			out = append(out, CellGroup{Cell: cell})
		}
		out[i].Stations = append(out[i].Stations, st)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Cell < out[b].Cell })
	return out, nil
}
