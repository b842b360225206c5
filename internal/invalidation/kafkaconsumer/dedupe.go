package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// position identifies an applied event: its timestamp and where it was read.
type position struct {
	ts        int64
	partition int32
	offset    int64
}

// versionDedupe remembers the newest applied event per table. Events with an
// older timestamp are stale; an equal timestamp is stale only when it is the
// same message redelivered.
type versionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, position]
}

func newVersionDedupe(size int) *versionDedupe {
	c, _ := lru.New[string, position](size)
	return &versionDedupe{lru: c}
}

func (d *versionDedupe) stale(table string, p position) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(table)
	if !ok {
		return false
	}
	if p.ts != last.ts {
		return p.ts < last.ts
	}
	return p.partition == last.partition && p.offset == last.offset
}

func (d *versionDedupe) record(table string, p position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(table); ok && p.ts < last.ts {
		return
	}
	d.lru.Add(table, p)
}
