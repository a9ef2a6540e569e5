package fdsnws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryIU = `<?xml version="1.0" encoding="UTF-8"?>
<seiscomp xmlns="http://geofon.gfz-potsdam.de/ns/seiscomp3-schema/0.11" version="0.11">
  <Inventory>
    <network publicID="Network/IU" code="IU">
      <start>1988-01-01T00:00:00.0000Z</start>
      <description>Global Seismograph Network - IRIS/USGS</description>
      <institutions>IRIS</institutions>
      <netClass>p</netClass>
      <restricted>false</restricted>
      <shared>true</shared>
      <station publicID="Station/IU/ANMO" code="ANMO">
        <start>1989-08-29T00:00:00.0000Z</start>
        <description>Albuquerque, New Mexico, USA</description>
        <latitude>34.9459</latitude>
        <longitude>-106.4572</longitude>
        <elevation>1850</elevation>
        <place>Albuquerque - NM</place>
        <country>USA</country>
        <affiliation>IRIS</affiliation>
        <restricted>false</restricted>
        <shared>true</shared>
      </station>
    </network>
  </Inventory>
</seiscomp>`

const inventoryTwoNetworks = `<seiscomp><Inventory>
  <network code="BR"><start>2010-01-01</start><end>2020-01-01</end>
    <station code="VILA"><latitude>-1</latitude><longitude>-50</longitude></station>
    <station code="VILB"><latitude>-2</latitude><longitude>-51</longitude></station>
  </network>
  <network code="BL"><start>2011-01-01</start></network>
</Inventory></seiscomp>`

type stubServer struct {
	mu      sync.Mutex
	queries []string
	paths   []string
	status  int
	body    string
}

func (s *stubServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.queries = append(s.queries, r.URL.RawQuery)
		status, body := s.status, s.body
		s.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (s *stubServer) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func newStub(t *testing.T, status int, body string, opts ...Option) (*Client, *stubServer) {
	t.Helper()
	stub := &stubServer{status: status, body: body}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/fdsnws/", opts...), stub
}

func TestNew_TrimsTrailingSlashOnce(t *testing.T) {
	assert.Equal(t, "http://host/fdsnws", New("http://host/fdsnws/").BaseURL())
	assert.Equal(t, "http://host/fdsnws", New("http://host/fdsnws").BaseURL())
}

func TestStationQuery_EndToEnd(t *testing.T) {
	c, stub := newStub(t, http.StatusOK, inventoryIU)

	stations, err := c.Station.Query().
		Channel().Network("IU").
		Channel().Station("ANMO").
		Time().StartBefore("2019-01-01").
		Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/fdsnws/station/1/query", stub.paths[0])
	assert.Equal(t, "format=sc3ml&nodata=404&network=IU&station=ANMO&startbefore=2019-01-01", stub.lastQuery())

	require.Len(t, stations, 1)
	st := stations[0]
	assert.Equal(t, "ANMO", st.Code)
	assert.Equal(t, "Albuquerque - NM", st.Location.Name)
	assert.InDelta(t, 34.9459, st.Latitude, 1e-9)
	assert.True(t, st.Active)
	assert.True(t, st.Shared)
}

func TestStationQuery_FlattensNetworks(t *testing.T) {
	c, _ := newStub(t, http.StatusOK, inventoryTwoNetworks)
	stations, err := c.Station.Query().Channel().Network("B?").Finish(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "VILA", stations[0].Code)
	assert.Equal(t, "VILB", stations[1].Code)
}

func TestStationQuery_NotFoundIsEmpty(t *testing.T) {
	c, _ := newStub(t, http.StatusNotFound, "")
	stations, err := c.Station.Query().Channel().Network("ZZ").Finish(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stations)
	assert.Empty(t, stations)
}

func TestQueryStation_LegacyUsesSamePath(t *testing.T) {
	c, stub := newStub(t, http.StatusOK, inventoryIU)
	stations, err := c.Station.QueryStation(context.Background(), StationQuery{NetworkCode: "IU", StationCode: "ANMO"})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "/fdsnws/station/1/query", stub.paths[0])
	assert.Equal(t, "nodata=404&format=sc3ml&net=IU&sta=ANMO", stub.lastQuery())
}

func TestQueryNetwork(t *testing.T) {
	c, stub := newStub(t, http.StatusOK, inventoryTwoNetworks)
	networks, err := c.Station.QueryNetwork(context.Background(), "B?")
	require.NoError(t, err)
	assert.Equal(t, "net=B%3F&format=sc3ml", stub.lastQuery())

	require.Len(t, networks, 2)
	assert.Equal(t, "BR", networks[0].Code)
	assert.False(t, networks[0].Active)
	assert.Len(t, networks[0].Stations, 2)
	assert.Equal(t, "BL", networks[1].Code)
	assert.True(t, networks[1].Active)
	assert.Empty(t, networks[1].Stations)
}

func TestQueryNetwork_NotFoundIsNil(t *testing.T) {
	c, _ := newStub(t, http.StatusNotFound, "Error 404: No data")
	networks, err := c.Station.QueryNetwork(context.Background(), "ZZ")
	require.NoError(t, err)
	assert.Nil(t, networks)
}

func TestQueryNetwork_NoContentIsNil(t *testing.T) {
	obs := &countingObserver{}
	c, stub := newStub(t, http.StatusNoContent, "", WithObserver(obs))
	networks, err := c.Station.QueryNetwork(context.Background(), "ZZ")
	require.NoError(t, err)
	assert.Nil(t, networks)
	assert.Equal(t, "net=ZZ&format=sc3ml", stub.lastQuery())
	assert.Equal(t, []string{OutcomeNotFound}, obs.outcomes)
}

func TestStationQuery_BlankBodyIsEmpty(t *testing.T) {
	cache := &memCache{data: map[string][]byte{}}
	c, _ := newStub(t, http.StatusOK, "  \n", WithCache(cache))
	stations, err := c.Station.Query().Finish(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stations)
	assert.Empty(t, stations)
	assert.Zero(t, cache.sets, "empty bodies are not cached")
}

func TestRequest_BodyLimit(t *testing.T) {
	c, _ := newStub(t, http.StatusOK, inventoryIU, WithMaxBodyBytes(16))
	_, err := c.Station.Query().Finish(context.Background())
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	c, _ = newStub(t, http.StatusOK, inventoryIU, WithMaxBodyBytes(int64(len(inventoryIU))))
	_, err = c.Station.Query().Finish(context.Background())
	assert.NoError(t, err)
}

func TestHTTPError_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 511) + strings.Repeat("é", 10)
	msg := (&HTTPError{Status: 500, Body: body}).Error()
	assert.True(t, utf8.ValidString(msg), "message must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("a", 511)+"..."))
}

func TestQueryNetwork_ServerErrorCarriesStatusAndBody(t *testing.T) {
	c, _ := newStub(t, http.StatusInternalServerError, "boom: database offline")
	_, err := c.Station.QueryNetwork(context.Background(), "IU")
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "boom: database offline", he.Body)
	assert.Contains(t, err.Error(), "500")
}

func TestQueryNetwork_MalformedDocument(t *testing.T) {
	c, _ := newStub(t, http.StatusOK, `<other><x/></other>`)
	_, err := c.Station.QueryNetwork(context.Background(), "IU")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	c, _ = newStub(t, http.StatusOK, `not xml at all <`)
	_, err = c.Station.Query().Finish(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestVersion(t *testing.T) {
	c, stub := newStub(t, http.StatusOK, "1.1.0\n")
	v, err := c.Station.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", v)
	assert.Equal(t, "/fdsnws/station/1/version", stub.paths[0])
	assert.Equal(t, "format=text", stub.lastQuery())
}

func TestRequest_ContextCanceled(t *testing.T) {
	c, _ := newStub(t, http.StatusOK, inventoryIU)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Station.Query().Finish(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (m *memCache) Get(_ context.Context, service, q string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[service+"?"+q]
	return b, ok, nil
}

func (m *memCache) Set(_ context.Context, service, q string, body []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[service+"?"+q] = body
	m.sets++
	return nil
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []string
	hits     int
	misses   int
}

func (o *countingObserver) ObserveRequest(_ string, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *countingObserver) ObserveCache(_ string, hit bool) {
	o.mu.Lock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
	o.mu.Unlock()
}

func TestClient_CacheAndObserver(t *testing.T) {
	cache := &memCache{data: map[string][]byte{}}
	obs := &countingObserver{}
	c, stub := newStub(t, http.StatusOK, inventoryIU, WithCache(cache), WithObserver(obs))

	for range 2 {
		stations, err := c.Station.Query().Channel().Network("IU").Finish(context.Background())
		require.NoError(t, err)
		require.Len(t, stations, 1)
	}

	assert.Len(t, stub.queries, 1, "second query should be served from cache")
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, []string{OutcomeOK}, obs.outcomes)

	_, err := c.Station.Version(context.Background())
	require.NoError(t, err)
	assert.Len(t, stub.queries, 2, "text requests bypass the cache")
}

func TestClient_NotFoundAndErrorsAreObserved(t *testing.T) {
	obs := &countingObserver{}
	c, stub := newStub(t, http.StatusNotFound, "", WithObserver(obs))
	_, _ = c.Station.QueryNetwork(context.Background(), "ZZ")

	stub.mu.Lock()
	stub.status = http.StatusServiceUnavailable
	stub.mu.Unlock()
	_, _ = c.Station.QueryNetwork(context.Background(), "ZZ")

	assert.Equal(t, []string{OutcomeNotFound, OutcomeError}, obs.outcomes)
}
