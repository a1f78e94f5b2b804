/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"hdxmix/internal/pipeline"
)

// Progress renders pipeline updates as a bar. The bar is created on the first
// update, once the planned track count is known.
type Progress struct {
	p    *mpb.Progress
	bar  *mpb.Bar
	last time.Time

	mu      sync.Mutex
	current string
}

func NewProgress() *Progress {
	return &Progress{p: mpb.New(mpb.WithWidth(30)), last: time.Now()}
}

// Follow consumes updates until ch is closed.
func (pr *Progress) Follow(ch <-chan pipeline.Progress) {
	for ev := range ch {
		pr.update(ev)
	}
}

func (pr *Progress) update(ev pipeline.Progress) {
	if pr.bar == nil {
		pr.bar = pr.p.AddBar(int64(ev.Total),
			mpb.PrependDecorators(
				decor.Name(" [MIXING] "),
				decor.CountersNoUnit("%d/%d tracks"),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WCSyncSpace),
				decor.Any(pr.name, decor.WCSyncSpaceR),
			),
		)
	}
	pr.mu.Lock()
	pr.current = ev.Name
	pr.mu.Unlock()

	now := time.Now()
	pr.bar.EwmaSetCurrent(int64(ev.Index), now.Sub(pr.last))
	pr.last = now
}

func (pr *Progress) name(decor.Statistics) string {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.current
}

// Stop finishes rendering. A bar left short of its total is aborted so the
// container can shut down.
func (pr *Progress) Stop() {
	if pr.bar != nil && !pr.bar.Completed() {
		pr.bar.Abort(false)
	}
	pr.p.Wait()
}
