package vfscore

import "sync/atomic"

// Counters holds the process-wide instrumentation counters spec §3/§9 calls
// out as "process-wide total_inodes/total_entries". Spec §9 asks that these
// be "explicit configuration passed into the class, not hidden statics, so
// tests can reset them" — so a Class owns one Counters value rather than the
// package holding package-level globals.
type Counters struct {
	totalInodes  int64
	totalEntries int64
}

// TotalInodes returns the number of live inodes across every superblock of
// the owning class.
func (c *Counters) TotalInodes() int64 { return atomic.LoadInt64(&c.totalInodes) }

// TotalEntries returns the number of live entries across every superblock
// of the owning class.
func (c *Counters) TotalEntries() int64 { return atomic.LoadInt64(&c.totalEntries) }

func (c *Counters) incInode()  { atomic.AddInt64(&c.totalInodes, 1) }
func (c *Counters) decInode()  { atomic.AddInt64(&c.totalInodes, -1) }
func (c *Counters) incEntry()  { atomic.AddInt64(&c.totalEntries, 1) }
func (c *Counters) decEntry()  { atomic.AddInt64(&c.totalEntries, -1) }
