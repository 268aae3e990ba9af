// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Statistics tracks telegram outcomes on a link. Counters are safe for
// concurrent use so a reader goroutine can record while a UI renders.
type Statistics struct {
	startTime time.Time

	total     *xsync.Counter
	valid     *xsync.Counter
	checksum  *xsync.Counter
	tooShort  *xsync.Counter
	mismatch  *xsync.Counter
	timeouts  *xsync.Counter
	transport *xsync.Counter
}

// StatsSnapshot is a point-in-time copy of the counters with derived rates.
type StatsSnapshot struct {
	Elapsed        time.Duration
	Total          int64
	Valid          int64
	ChecksumErrors int64
	TooShort       int64
	Mismatches     int64
	Timeouts       int64
	TransportLost  int64
	FrameRate      float64 // valid frames/sec
	ErrorRate      float64 // errors/sec
}

// NewStatistics creates a statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
		total:     xsync.NewCounter(),
		valid:     xsync.NewCounter(),
		checksum:  xsync.NewCounter(),
		tooShort:  xsync.NewCounter(),
		mismatch:  xsync.NewCounter(),
		timeouts:  xsync.NewCounter(),
		transport: xsync.NewCounter(),
	}
}

// Record counts one terminal receiver state. Non-terminal states are ignored.
func (s *Statistics) Record(state RxState) {
	switch state {
	case RxReady:
		s.valid.Inc()
	case RxChecksumInvalid:
		s.checksum.Inc()
	case RxTooShort:
		s.tooShort.Inc()
	case RxContentMismatch:
		s.mismatch.Inc()
	case RxReadTimeout:
		s.timeouts.Inc()
	case RxTransportLost:
		s.transport.Inc()
	default:
		return
	}
	s.total.Inc()
}

// Snapshot returns a copy of the counters with rates computed over the
// tracker's lifetime.
func (s *Statistics) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Elapsed:        time.Since(s.startTime),
		Total:          s.total.Value(),
		Valid:          s.valid.Value(),
		ChecksumErrors: s.checksum.Value(),
		TooShort:       s.tooShort.Value(),
		Mismatches:     s.mismatch.Value(),
		Timeouts:       s.timeouts.Value(),
		TransportLost:  s.transport.Value(),
	}

	secs := snap.Elapsed.Seconds()
	if secs > 0 {
		snap.FrameRate = float64(snap.Valid) / secs
		snap.ErrorRate = float64(snap.Total-snap.Valid) / secs
	}
	return snap
}

// String renders the snapshot as a single summary line.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"frames=%d valid=%d crc=%d short=%d mismatch=%d timeout=%d lost=%d (%.1f frames/s, %.1f errors/s)",
		s.Total, s.Valid, s.ChecksumErrors, s.TooShort, s.Mismatches, s.Timeouts, s.TransportLost,
		s.FrameRate, s.ErrorRate)
}
