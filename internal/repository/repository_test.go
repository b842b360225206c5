package repository

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.FixedZone("x", 3600))
	cases := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"a", "a"},
		{[]byte("b"), "b"},
		{int32(7), int64(7)},
		{int16(-2), int64(-2)},
		{float32(1.5), 1.5},
		{true, "true"},
		{ts, "2024-03-05T09:00:00Z"},
		{big.NewFloat(2.25), 2.25},
	}
	for _, c := range cases {
		if got := normalize(c.in); got != c.want {
			t.Fatalf("normalize(%#v)=%#v want %#v", c.in, got, c.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`survey"; drop`); got != `"survey""; drop"` {
		t.Fatalf("got %s", got)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(context.Background(), "", Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Put("survey", []model.Row{{"_id": "1"}})
	m.PutMapping("survey", []model.ColumnMapping{{Original: "Name", SQL: "name"}})

	rows, err := m.FetchRows(context.Background(), "survey")
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
	rows[0]["_id"] = "mutated"
	again, _ := m.FetchRows(context.Background(), "survey")
	if again[0]["_id"] != "1" {
		t.Fatal("FetchRows must return copies")
	}

	if _, err := m.FetchRows(context.Background(), "missing"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("err=%v want ErrTableNotFound", err)
	}
	mp, _ := m.FetchColumnMapping(context.Background(), "survey")
	if len(mp) != 1 || mp[0].SQL != "name" {
		t.Fatalf("mapping=%v", mp)
	}
	if ok, _ := m.TableExists(context.Background(), "missing"); ok {
		t.Fatal("missing table reported as existing")
	}
}
