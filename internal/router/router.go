// Package router exposes the station service over a small JSON HTTP API.
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/mohammed-shakir/fdsnws-client/internal/logger"
	h3mapper "github.com/mohammed-shakir/fdsnws-client/internal/mapper/h3"
	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

// StationAPI is the part of *fdsnws.StationService the gateway serves.
type StationAPI interface {
	Query() *fdsnws.QueryBuilder[[]fdsnws.Station]
	QueryNetwork(ctx context.Context, code string) ([]fdsnws.Network, error)
	Version(ctx context.Context) (string, error)
}

type Handler struct {
	stations   StationAPI
	logger     *slog.Logger
	defaultRes int
}

type Option func(*Handler)

// WithDefaultH3Res sets the resolution /v1/cells uses when the request has
// no h3res parameter.
func WithDefaultH3Res(res int) Option {
	return func(h *Handler) { h.defaultRes = res }
}

func New(stations StationAPI, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{stations: stations, logger: logger, defaultRes: 5}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Mount registers the /v1 routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", h.version)
		r.Get("/networks/{code}", h.network)
		r.Get("/stations", h.stationList)
		r.Get("/cells", h.cellList)
	})
}

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

type stationsBody struct {
	Count    int              `json:"count"`
	Stations []fdsnws.Station `json:"stations"`
}

type cellsBody struct {
	Count int                  `json:"count"`
	H3Res int                  `json:"h3res"`
	Cells []h3mapper.CellGroup `json:"cells"`
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	v, err := h.stations.Version(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": v})
}

func (h *Handler) network(w http.ResponseWriter, r *http.Request) {
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil || strings.TrimSpace(code) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid network code"})
		return
	}
	code = strings.TrimSpace(code)
	ctx := logger.WithNetwork(r.Context(), code)

	networks, err := h.stations.QueryNetwork(ctx, code)
	if err != nil {
		h.upstreamError(w, r.WithContext(ctx), err)
		return
	}
	if networks == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no network matches " + code})
		return
	}
	writeJSON(w, http.StatusOK, networks)
}

func (h *Handler) stationList(w http.ResponseWriter, r *http.Request) {
	h.serveStations(w, r, -1)
}

func (h *Handler) cellList(w http.ResponseWriter, r *http.Request) {
	h.serveStations(w, r, h.defaultRes)
}

// serveStations answers a station search. Results are grouped by H3 cell
// when the request carries h3res or defaultRes is not negative.
func (h *Handler) serveStations(w http.ResponseWriter, r *http.Request, defaultRes int) {
	b := h.stations.Query()
	req, err := applyStationParams(b, r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	if req.h3res < 0 {
		req.h3res = defaultRes
	}

	stations, err := b.Finish(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	if req.h3res < 0 {
		if stations == nil {
			stations = []fdsnws.Station{}
		}
		writeJSON(w, http.StatusOK, stationsBody{Count: len(stations), Stations: stations})
		return
	}
	cells, err := h3mapper.GroupByCell(stations, req.h3res)
	if err != nil {
		h.logger.WarnContext(r.Context(), "stations cannot be placed on the h3 grid", "h3res", req.h3res, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	if cells == nil {
		cells = []h3mapper.CellGroup{}
	}
	writeJSON(w, http.StatusOK, cellsBody{Count: len(stations), H3Res: req.h3res, Cells: cells})
}

// upstreamError maps client errors to gateway statuses: server errors and
// bad documents become 502, timeouts 504.
func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var he *fdsnws.HTTPError
	switch {
	case errors.As(err, &he):
		h.logger.WarnContext(r.Context(), "upstream status", "status", he.Status, "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), UpstreamStatus: he.Status})
	case errors.Is(err, fdsnws.ErrMalformedResponse):
		h.logger.WarnContext(r.Context(), "malformed upstream response", "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		h.logger.DebugContext(r.Context(), "client went away", "err", err)
	default:
		h.logger.ErrorContext(r.Context(), "station request failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
