package fdsnws

import (
	"context"
	"fmt"
	"strings"
)

const (
	stationService     = "station"
	stationQueryPath   = "/station/1/query"
	stationVersionPath = "/station/1/version"
)

// StationCapabilities are the constraint groups the station service accepts.
var StationCapabilities = []Capability{CapChannel, CapGeographical, CapTime, CapStation}

// StationService queries the fdsnws-station service. The service may not be
// enabled on every SeisComP instance, and constraints the server does not
// support are rejected by the server.
type StationService struct {
	client *Client
}

// Query returns a builder for a station query.
func (s *StationService) Query() *QueryBuilder[[]Station] {
	return NewQueryBuilder(StationCapabilities, func(ctx context.Context, q string) ([]Station, error) {
		return s.queryStations(ctx, RawQuery(q))
	})
}

// QueryStation queries stations with a flat StationQuery.
//
// Deprecated: use Query instead.
func (s *StationService) QueryStation(ctx context.Context, q StationQuery) ([]Station, error) {
	return s.queryStations(ctx, StationQueryParams(q))
}

// queryStations backs both Query and QueryStation. No matching data gives
// an empty, non-nil slice.
func (s *StationService) queryStations(ctx context.Context, q Query) ([]Station, error) {
	doc, err := s.client.request(ctx, stationService, stationQueryPath, q, true)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	if doc == nil {
		return []Station{}, nil
	}
	stations, err := stationsFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	return stations, nil
}

// QueryNetwork returns the networks matching code, with their stations.
// Wildcards such as "G?" are supported. The result is nil when the server
// has no matching inventory.
func (s *StationService) QueryNetwork(ctx context.Context, code string) ([]Network, error) {
	q := Params{{Key: "net", Value: code}, {Key: "format", Value: "sc3ml"}}
	doc, err := s.client.request(ctx, stationService, stationQueryPath, q, true)
	if err != nil {
		return nil, fmt.Errorf("query network %q: %w", code, err)
	}
	if doc == nil {
		return nil, nil
	}
	networks, err := networksFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("query network %q: %w", code, err)
	}
	return networks, nil
}

// Version returns the version string of the station service.
func (s *StationService) Version(ctx context.Context) (string, error) {
	v, err := s.client.request(ctx, stationService, stationVersionPath, Params{{Key: "format", Value: "text"}}, false)
	if err != nil {
		return "", fmt.Errorf("station version: %w", err)
	}
	str, _ := v.(string)
	return strings.TrimSpace(str), nil
}
