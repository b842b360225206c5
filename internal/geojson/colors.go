package geojson

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const DefaultFilterColor = "#3333FF"

// colorMap assigns colors to filter values for a single build; first seen wins.
type colorMap struct {
	byValue map[string]string
	used    map[string]struct{}
}

func newColorMap() *colorMap {
	return &colorMap{byValue: map[string]string{}, used: map[string]struct{}{}}
}

func (c *colorMap) colorFor(value string) string {
	if value == "" {
		return DefaultFilterColor
	}
	if col, ok := c.byValue[value]; ok {
		return col
	}
	col := ColorForValue(value)
	for salt := 1; ; salt++ {
		if _, taken := c.used[col]; !taken && col != DefaultFilterColor {
			break
		}
		col = hexColor(xxhash.Sum64String(value + "#" + strconv.Itoa(salt)))
	}
	c.byValue[value] = col
	c.used[col] = struct{}{}
	return col
}

// ColorForValue derives a #RRGGBB color from value.
func ColorForValue(value string) string {
	return hexColor(xxhash.Sum64String(value))
}

func hexColor(h uint64) string {
	return fmt.Sprintf("#%06X", h&0xFFFFFF)
}
