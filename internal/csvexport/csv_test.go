package csvexport

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/mohammed-shakir/geodata-explorer/internal/core/model"
)

func TestEscapeCSVValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"Line1\nLine2", `Line1\nLine2`},
		{"a\r\nb", `a\nb`},
		{"tab\there", `tab\there`},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"plain", "plain"},
		{nil, ""},
		{3.5, "3.5"},
		{int64(7), "7"},
	}
	for _, c := range cases {
		if got := EscapeCSVValue(c.in); got != c.want {
			t.Fatalf("EscapeCSVValue(%#v)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestConvertToCSV(t *testing.T) {
	entries := []model.DataEntry{
		{"name": "Ana", "notes": "a,b"},
		{"name": "Bo", "count": 2.0},
	}
	got := ConvertToCSV(entries)
	want := "name,notes,count\n" +
		"Ana,\"a,b\",\n" +
		"Bo,,2\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if ConvertToCSV(nil) != "" {
		t.Fatal("empty input should render nothing")
	}
}

func TestColumns_FirstSeenOrder(t *testing.T) {
	got := Columns([]model.DataEntry{{"b": 1.0, "a": 1.0}, {"c": 1.0, "a": 2.0}})
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestWrite_PropagatesWriterError(t *testing.T) {
	if err := Write(failWriter{}, []model.DataEntry{{"a": "1"}}); err == nil {
		t.Fatal("expected error")
	}
	var buf bytes.Buffer
	if err := Write(&buf, []model.DataEntry{{"a": "1"}}); err != nil || buf.String() != "a\n1\n" {
		t.Fatalf("err=%v out=%q", err, buf.String())
	}
}
