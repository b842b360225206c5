package geojson

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

func pointRow(id, category string) model.Row {
	return model.Row{
		"_id":            id,
		"g__type":        "Point",
		"g__coordinates": "[-54.28,3.12]",
		"category":       category,
		"notes":          "",
		"observer":       "ana",
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	fc := Build(nil, Options{})
	if fc.Type != "FeatureCollection" {
		t.Fatalf("type=%q", fc.Type)
	}
	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"FeatureCollection","features":[]}` {
		t.Fatalf("got %s", b)
	}
}

func TestBuild_SkipsRowsWithoutGeometry(t *testing.T) {
	rows := []model.Row{
		pointRow("a", "x"),
		{"_id": "b", "g__type": "Point"},
		{"_id": "c", "g__type": "Point", "g__coordinates": ""},
		{"_id": "d", "g__type": "Point", "g__coordinates": "[1,"},
		{"_id": "e", "g__coordinates": "[1,2]"},
		{"_id": "f", "g__type": "Point", "g__coordinates": "[]"},
	}
	fc := Build(rows, Options{IncludeAllProperties: true})
	if len(fc.Features) != 1 {
		t.Fatalf("features=%d want 1", len(fc.Features))
	}
	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Fatalf("geometry type=%q", f.Geometry.Type)
	}
	coords, ok := f.Geometry.Coordinates.([]any)
	if !ok || len(coords) != 2 || coords[0] != -54.28 {
		t.Fatalf("coordinates=%#v", f.Geometry.Coordinates)
	}
}

func TestBuild_StableHashedIDs(t *testing.T) {
	a := Build([]model.Row{pointRow("uuid-123", "x")}, Options{})
	b := Build([]model.Row{pointRow("uuid-123", "y")}, Options{})
	if a.Features[0].ID == nil {
		t.Fatal("expected an id")
	}
	if a.Features[0].ID != b.Features[0].ID {
		t.Fatalf("ids differ across calls: %v vs %v", a.Features[0].ID, b.Features[0].ID)
	}
	if _, ok := a.Features[0].ID.(int64); !ok {
		t.Fatalf("id type %T want int64", a.Features[0].ID)
	}
	c := Build([]model.Row{pointRow("uuid-124", "x")}, Options{})
	if c.Features[0].ID == a.Features[0].ID {
		t.Fatal("distinct raw ids hashed to the same id")
	}
	if a.Features[0].Properties["_id"] != "uuid-123" {
		t.Fatalf("raw id property=%v", a.Features[0].Properties["_id"])
	}
}

func TestBuild_IDStrategies(t *testing.T) {
	row := pointRow("0000000100000002", "x")

	fc := Build([]model.Row{row}, Options{IDs: MapeoIDs{}})
	if got := fc.Features[0].ID; got != int64(3) {
		t.Fatalf("mapeo id=%v want 3", got)
	}

	nonHex := pointRow("not-hex", "x")
	m := Build([]model.Row{nonHex}, Options{IDs: MapeoIDs{}})
	h := Build([]model.Row{nonHex}, Options{IDs: HashedIDs{}})
	if m.Features[0].ID != h.Features[0].ID {
		t.Fatalf("non-hex mapeo id should fall back to hashing: %v vs %v", m.Features[0].ID, h.Features[0].ID)
	}

	ex := Build([]model.Row{row}, Options{IDs: ExplicitIDs(func(r map[string]any) any {
		return "custom-" + r["observer"].(string)
	})})
	if got := ex.Features[0].ID; got != "custom-ana" {
		t.Fatalf("explicit id=%v", got)
	}
}

func TestBuild_CustomIDField(t *testing.T) {
	row := model.Row{"docId": "abc", "g__type": "Point", "g__coordinates": "[1,2]"}
	fc := Build([]model.Row{row}, Options{IDField: "docId"})
	if fc.Features[0].ID == nil {
		t.Fatal("expected id from custom field")
	}
	if fc.Features[0].Properties["docId"] != "abc" {
		t.Fatalf("properties=%v", fc.Features[0].Properties)
	}
}

func TestBuild_PropertyModes(t *testing.T) {
	row := pointRow("a", "river")

	full := Build([]model.Row{row}, Options{IncludeAllProperties: true}).Features[0].Properties
	for _, k := range []string{"_id", "category", "observer"} {
		if _, ok := full[k]; !ok {
			t.Fatalf("full mode missing %q: %v", k, full)
		}
	}
	if _, ok := full["notes"]; ok {
		t.Fatal("empty string property must be omitted")
	}
	for k := range full {
		if len(k) >= 3 && k[:3] == "g__" {
			t.Fatalf("geometry column %q leaked into properties", k)
		}
	}

	minimal := Build([]model.Row{row}, Options{IncludeProperties: []string{"observer", "notes", "missing"}}).Features[0].Properties
	if len(minimal) != 2 || minimal["observer"] != "ana" || minimal["_id"] != "a" {
		t.Fatalf("minimal properties=%v", minimal)
	}
}

func TestBuild_FilterColorConsistency(t *testing.T) {
	rows := []model.Row{
		pointRow("1", "river"),
		pointRow("2", "forest"),
		pointRow("3", "river"),
		pointRow("4", ""),
	}
	fc := Build(rows, Options{FilterColumn: "category"})

	c1 := fc.Features[0].Properties[FilterColorKey]
	c2 := fc.Features[1].Properties[FilterColorKey]
	c3 := fc.Features[2].Properties[FilterColorKey]
	c4 := fc.Features[3].Properties[FilterColorKey]

	if c1 != c3 {
		t.Fatalf("same value got different colors: %v vs %v", c1, c3)
	}
	if c1 == c2 {
		t.Fatalf("distinct values share color %v", c1)
	}
	if c4 != DefaultFilterColor {
		t.Fatalf("empty value color=%v want %s", c4, DefaultFilterColor)
	}
	if fc.Features[0].Properties["category"] != "river" {
		t.Fatal("raw filter value missing")
	}
	if s, _ := c1.(string); len(s) != 7 || s[0] != '#' {
		t.Fatalf("color %q is not #RRGGBB", s)
	}
}

func TestColorMap_ResaltsCollisions(t *testing.T) {
	cm := newColorMap()
	first := cm.colorFor("a")
	// force a collision by pre-claiming b's natural color
	cm.used[ColorForValue("b")] = struct{}{}
	second := cm.colorFor("b")
	if second == ColorForValue("b") || second == first {
		t.Fatalf("collision not resolved: a=%s b=%s", first, second)
	}
	if again := cm.colorFor("b"); again != second {
		t.Fatalf("color changed within a build: %s vs %s", second, again)
	}
}

func TestMerge_KeepsFeaturesWithCollidingIDs(t *testing.T) {
	a := model.FeatureCollection{Type: "FeatureCollection", Features: []model.Feature{
		{Type: "Feature", ID: int64(1), Properties: map[string]any{"src": "a"}},
		{Type: "Feature"},
	}}
	b := model.FeatureCollection{Type: "FeatureCollection", Features: []model.Feature{
		{Type: "Feature", ID: int64(1), Properties: map[string]any{"src": "b"}},
		{Type: "Feature", ID: int64(2)},
	}}
	out := Merge(a, b)
	if len(out.Features) != 4 {
		t.Fatalf("features=%d want 4", len(out.Features))
	}
	if out.Features[0].Properties["src"] != "a" || out.Features[2].Properties["src"] != "b" {
		t.Fatalf("order not preserved: %+v", out.Features)
	}
	if empty := Merge(); empty.Features == nil || len(empty.Features) != 0 {
		t.Fatalf("empty merge=%#v", empty)
	}
}

func TestMerge_HashedAndMapeoIDCollision(t *testing.T) {
	koboID := HashedIDs{}.FeatureID("kobo-row-1", nil)
	n, ok := koboID.(int64)
	if !ok {
		t.Fatalf("hashed id type %T", koboID)
	}
	hex := strconv.FormatInt(n, 16)
	if got := (MapeoIDs{}).FeatureID(hex, nil); got != koboID {
		t.Fatalf("setup: mapeo id %v does not collide with %v", got, koboID)
	}

	kobo := Build([]model.Row{{"_id": "kobo-row-1", "g__type": "Point", "g__coordinates": "[1,2]"}}, Options{})
	mapeo := Build([]model.Row{{"_id": hex, "g__type": "Point", "g__coordinates": "[3,4]"}}, Options{IDs: MapeoIDs{}})
	out := Merge(kobo, mapeo)
	if len(out.Features) != 2 {
		t.Fatalf("distinct rows collapsed: got %d features", len(out.Features))
	}
}
