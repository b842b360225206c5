package geo

import (
	"math"
	"testing"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

func TestIsValidCoordinate_Bounds(t *testing.T) {
	cases := []struct {
		in   float64
		want bool
	}{
		{0, true},
		{-180, true},
		{180, true},
		{120, true}, // latitude is not held to +-90
		{180.0001, false},
		{-200, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, c := range cases {
		if got := IsValidCoordinate(c.in); got != c.want {
			t.Fatalf("IsValidCoordinate(%v)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestHasValidCoordinates_EquivalentEncodings(t *testing.T) {
	pairs := [][2]string{
		{"[-54.28,3.12]", "-54.28,3.12"},
		{"[0,0]", "0,0"},
		{"[179.9,-89.5]", "179.9, -89.5"},
	}
	for _, p := range pairs {
		if !HasValidCoordinates(model.Row{"coordinates": p[0]}) {
			t.Fatalf("json encoding %q rejected", p[0])
		}
		if !HasValidCoordinates(model.Row{"coordinates": p[1]}) {
			t.Fatalf("csv encoding %q rejected", p[1])
		}
	}
}

func TestHasValidCoordinates_Rejections(t *testing.T) {
	rows := []model.Row{
		{},
		{"name": "no geometry"},
		{"coordinates": ""},
		{"coordinates": "[1,2"},
		{"coordinates": "1,2,3"},
		{"coordinates": "abc,2"},
		{"coordinates": "[200,1]"},
		{"coordinates": "[]"},
		{"coordinates": 12.5},
		{"g__coordinates": "[[[0,0],[1,1],[0,1],[0,0]]]"},
	}
	for i, r := range rows {
		if HasValidCoordinates(r) {
			t.Fatalf("row %d: expected invalid: %+v", i, r)
		}
	}
}

func TestHasValidCoordinates_FlattensOneLevel_AndAnyKeyWins(t *testing.T) {
	if !HasValidCoordinates(model.Row{"g__coordinates": "[[-54.28,3.12],[-54.29,3.13]]"}) {
		t.Fatal("line string should flatten to valid pairs")
	}
	r := model.Row{
		"a_coordinates": "bad",
		"B_Coordinates": "10,20",
	}
	if !HasValidCoordinates(r) {
		t.Fatal("expected a later valid coordinate column to validate the row")
	}
}

func TestIsValidGeoRow_PerType(t *testing.T) {
	cases := []struct {
		name string
		row  model.Row
		want bool
	}{
		{"point", model.Row{"_id": "a", "g__type": "Point", "g__coordinates": "[1,2]"}, true},
		{"point parsed", model.Row{"_id": "a", "g__type": "Point", "g__coordinates": []any{1.0, 2.0}}, true},
		{"point wrong arity", model.Row{"_id": "a", "g__type": "Point", "g__coordinates": "[1,2,3]"}, false},
		{"line", model.Row{"_id": "a", "g__type": "LineString", "g__coordinates": "[[1,2],[3,4]]"}, true},
		{"multiline nested", model.Row{"_id": "a", "g__type": "MultiLineString", "g__coordinates": "[[[1,2],[3,4]],[[5,6],[7,8]]]"}, true},
		{"polygon", model.Row{"_id": "a", "g__type": "Polygon", "g__coordinates": "[[[0,0],[1,0],[1,1],[0,0]]]"}, true},
		{"polygon flat", model.Row{"_id": "a", "g__type": "Polygon", "g__coordinates": "[[0,0],[1,0]]"}, false},
		{"multipolygon", model.Row{"_id": "a", "g__type": "MultiPolygon", "g__coordinates": "[[[[0,0],[1,0],[1,1],[0,0]]]]"}, true},
		{"multipolygon as rings", model.Row{"_id": "a", "g__type": "MultiPolygon", "g__coordinates": "[[[0,0],[1,0],[1,1],[0,0]]]"}, true},
		{"missing id", model.Row{"g__type": "Point", "g__coordinates": "[1,2]"}, false},
		{"empty id", model.Row{"_id": "  ", "g__type": "Point", "g__coordinates": "[1,2]"}, false},
		{"unknown type", model.Row{"_id": "a", "g__type": "Circle", "g__coordinates": "[1,2]"}, false},
		{"bad json", model.Row{"_id": "a", "g__type": "Point", "g__coordinates": "[1,"}, false},
		{"out of range", model.Row{"_id": "a", "g__type": "Point", "g__coordinates": "[181,2]"}, false},
		{"numeric id", model.Row{"_id": 42.0, "g__type": "Point", "g__coordinates": "[1,2]"}, true},
	}
	for _, c := range cases {
		if got := IsValidGeoRow(c.row); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
	if IsValidGeoRow(nil) {
		t.Fatal("nil row must be invalid")
	}
}
