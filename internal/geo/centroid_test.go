package geo

import "testing"

func TestCalculateCentroid_Shapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"point", `[-54.28,3.12]`, "3.120000, -54.280000"},
		{"linestring", `[[-54.28,3.12],[-54.29,3.13]]`, "3.125000, -54.285000"},
		{"polygon", `[[[0,0],[2,0],[2,2],[0,2]]]`, "1.000000, 1.000000"},
		{"multipolygon", `[[[[0,0],[2,0],[2,2],[0,2]]],[[[10,10],[12,10],[12,12],[10,12]]]]`, "6.000000, 6.000000"},
	}
	for _, c := range cases {
		if got := CalculateCentroid(c.in); got != c.want {
			t.Fatalf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestCalculateCentroid_PolygonHolesAreAveraged(t *testing.T) {
	// outer ring centered on (2,2); hole points pull the mean toward (1,1)
	in := `[[[0,0],[4,0],[4,4],[0,4]],[[1,1],[1,1],[1,1],[1,1]]]`
	if got, want := CalculateCentroid(in), "1.500000, 1.500000"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCalculateCentroid_Malformed(t *testing.T) {
	for _, in := range []string{``, `not json`, `[1]`, `["a","b"]`, `[[1,2],[3]]`, `5`, `[[[[[1,2]]]]]`} {
		if got := CalculateCentroid(in); got != "" {
			t.Fatalf("CalculateCentroid(%q)=%q want empty", in, got)
		}
	}
}

func TestCentroidOf_Parsed(t *testing.T) {
	lat, lng, ok := CentroidOf([]any{[]any{0.0, 0.0}, []any{2.0, 4.0}})
	if !ok {
		t.Fatal("expected ok")
	}
	if lat != 2 || lng != 1 {
		t.Fatalf("got lat=%v lng=%v want 2,1", lat, lng)
	}
}
