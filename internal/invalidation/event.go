// Package invalidation defines the table update events that evict cached views.
package invalidation

import (
	"errors"
	"strings"
	"time"
)

const (
	OpInsert   = "insert"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpTruncate = "truncate"
	OpReplace  = "replace"
)

// Event announces that rows of Table changed at TS.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Table   string    `json:"table"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
	Rows    int       `json:"rows,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return errors.New("version must be 1")
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete, OpTruncate, OpReplace:
	default:
		return errors.New("op must be insert|update|delete|truncate|replace")
	}
	if strings.TrimSpace(e.Table) == "" {
		return errors.New("table is required")
	}
	if e.TS.IsZero() {
		return errors.New("ts is required")
	}
	if e.Rows < 0 {
		return errors.New("rows must not be negative")
	}
	return nil
}
