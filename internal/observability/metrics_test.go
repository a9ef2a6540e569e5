package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

var _ fdsnws.Observer = Observer{}

func TestMetricsHandler_Smoke(t *testing.T) {
	ExposeBuildInfo("test")
	ObserveHTTP("GET", "/v1/stations", 200, 0.001)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "app_build_info") || !strings.Contains(body, "http_requests_total") {
		t.Fatalf("metrics payload did not contain expected metric names; got:\n%s", body)
	}
}

func TestObserver_CountsOutcomes(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("station", fdsnws.OutcomeNotFound))

	var o Observer
	o.ObserveRequest("station", fdsnws.OutcomeNotFound, 20*time.Millisecond)
	o.ObserveCache("station", true)
	o.ObserveCache("station", false)

	if got := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("station", fdsnws.OutcomeNotFound)); got != before+1 {
		t.Fatalf("not_found counter=%v want %v", got, before+1)
	}
	if testutil.ToFloat64(responseCacheTotal.WithLabelValues("station", "hit")) < 1 {
		t.Fatalf("expected a cache hit sample")
	}
}

func TestObserveCacheOp_ResultLabel(t *testing.T) {
	ObserveCacheOp("get", nil, 0.001)
	ObserveCacheOp("get", errors.New("down"), 0.001)

	if testutil.ToFloat64(cacheOpTotal.WithLabelValues("get", "error")) < 1 {
		t.Fatalf("expected error sample for get")
	}
	if testutil.ToFloat64(cacheOpTotal.WithLabelValues("get", "ok")) < 1 {
		t.Fatalf("expected ok sample for get")
	}
}
