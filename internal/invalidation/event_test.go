package invalidation

import (
	"encoding/json"
	"testing"
	"time"
)

func mustTS() time.Time { return time.Date(2025, 10, 26, 12, 30, 45, 0, time.UTC) }

func TestEvent_Validate(t *testing.T) {
	ok := Event{Version: 1, Op: OpUpdate, Table: "survey", TS: mustTS()}
	cases := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{"happy", func(*Event) {}, false},
		{"truncate", func(e *Event) { e.Op = OpTruncate }, false},
		{"bad version", func(e *Event) { e.Version = 2 }, true},
		{"bad op", func(e *Event) { e.Op = "upsert" }, true},
		{"blank table", func(e *Event) { e.Table = "  " }, true},
		{"zero ts", func(e *Event) { e.TS = time.Time{} }, true},
		{"negative rows", func(e *Event) { e.Rows = -1 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := ok
			c.mutate(&ev)
			if err := ev.Validate(); (err != nil) != c.wantErr {
				t.Fatalf("Validate()=%v wantErr=%v", err, c.wantErr)
			}
		})
	}
}

func TestEvent_JSONShape(t *testing.T) {
	raw := `{"version":1,"op":"insert","table":"alerts","ts":"2025-10-26T12:30:45Z","source":"etl"}`
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatal(err)
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ev.Table != "alerts" || !ev.TS.Equal(mustTS()) || ev.Source != "etl" {
		t.Fatalf("decoded=%+v", ev)
	}
}
