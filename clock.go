package vfscore

import "time"

// NowFunc is indirected so tests (including those in other packages, e.g.
// backend/stub) can simulate clock advancement for TTL expiry scenarios
// (spec §8 S3) without sleeping real time. Production callers never touch
// this; it defaults to time.Now.
var NowFunc = time.Now

func nowFunc() time.Time { return NowFunc() }
