// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package supervisor

import (
	"context"
	"time"

	"github.com/technoborsch/easyview/internal/store"
)

// GCService periodically runs badger value-log garbage collection. Badger
// never reclaims value-log space on its own; something has to drive it.
type GCService struct {
	store        *store.Store
	interval     time.Duration
	discardRatio float64
}

// NewGCService builds the GC loop for st.
func NewGCService(st *store.Store, interval time.Duration, discardRatio float64) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio > 1 {
		discardRatio = 0.5
	}
	return &GCService{store: st, interval: interval, discardRatio: discardRatio}
}

// Serve implements suture.Service.
func (s *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.store.RunGC(s.discardRatio)
		}
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *GCService) String() string {
	return "badger-gc"
}
