package invalidation

import (
	"errors"
	"testing"
	"time"
)

func mustTS() time.Time { return time.Date(2025, 10, 26, 12, 30, 45, 0, time.UTC) }

func TestDecode_HappyPath(t *testing.T) {
	ev, err := Decode([]byte(`{"version":1,"op":"update","network":" iu ","ts":"2025-10-26T12:30:45Z","seq":7}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Network != "IU" || ev.Seq != 7 || !ev.TS.Equal(mustTS()) {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecode_BadJSON(t *testing.T) {
	_, err := Decode([]byte(`{"version":`))
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("err=%v want ErrInvalidEvent", err)
	}
}

func TestEvent_Validate(t *testing.T) {
	ok := Event{Version: 1, Op: OpDelete, Network: "BR", TS: mustTS()}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	cases := map[string]Event{
		"version":  {Version: 2, Op: OpDelete, Network: "BR", TS: mustTS()},
		"op":       {Version: 1, Op: "upsert", Network: "BR", TS: mustTS()},
		"network":  {Version: 1, Op: OpDelete, Network: "  ", TS: mustTS()},
		"wildcard": {Version: 1, Op: OpDelete, Network: "B?", TS: mustTS()},
		"ts":       {Version: 1, Op: OpDelete, Network: "BR"},
	}
	for name, ev := range cases {
		if err := ev.Validate(); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("%s: err=%v want ErrInvalidEvent", name, err)
		}
	}
}
