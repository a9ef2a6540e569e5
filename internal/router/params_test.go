package router

import (
	"context"
	"net/url"
	"testing"

	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

func newBuilder() *stationBuilder {
	return fdsnws.NewQueryBuilder(fdsnws.StationCapabilities, func(context.Context, string) ([]fdsnws.Station, error) {
		return nil, nil
	})
}

func TestApplyStationParams_AliasesAndGroups(t *testing.T) {
	q, _ := url.ParseQuery("net=IU&lat=34.9&lon=-106.4&maxradius=2&minlat=30&level=channel&matchtimeseries=true&includeavailability=false")
	b := newBuilder()
	req, err := applyStationParams(b, q)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if req.h3res != -1 {
		t.Fatalf("h3res=%d want -1", req.h3res)
	}
	want := "format=sc3ml&nodata=404&network=IU&latitude=34.9&longitude=-106.4&maxradius=2&minlatitude=30&level=channel&matchtimeseries=true"
	if got := b.Query(); got != want {
		t.Fatalf("query\n got %s\nwant %s", got, want)
	}
}

func TestApplyStationParams_SkipsBlankValues(t *testing.T) {
	q, _ := url.ParseQuery("station=&station=ANMO&h3res=6")
	b := newBuilder()
	req, err := applyStationParams(b, q)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if req.h3res != 6 {
		t.Fatalf("h3res=%d want 6", req.h3res)
	}
	if got := b.Query(); got != "format=sc3ml&nodata=404&station=ANMO" {
		t.Fatalf("query=%s", got)
	}
}

func TestApplyStationParams_CaseInsensitiveNames(t *testing.T) {
	q, _ := url.ParseQuery("NETWORK=IU")
	b := newBuilder()
	if _, err := applyStationParams(b, q); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := b.Query(); got != "format=sc3ml&nodata=404&network=IU" {
		t.Fatalf("query=%s", got)
	}
}
