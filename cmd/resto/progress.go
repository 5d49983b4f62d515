// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
)

// textProgress reports download progress as a line per ten percent.
type textProgress struct {
	w     io.Writer
	name  string
	total int64
	done  int64
	step  int64
}

func newTextProgress(w io.Writer) *textProgress {
	return &textProgress{w: w}
}

func (p *textProgress) Start(name string, total int64) {
	p.name, p.total, p.done, p.step = name, total, 0, 0
	if total > 0 {
		_, _ = fmt.Fprintf(p.w, "downloading %s (%s)\n", name, humanSize(total))
		return
	}
	_, _ = fmt.Fprintf(p.w, "downloading %s\n", name)
}

func (p *textProgress) Advance(n int64) {
	p.done += n
	if p.total <= 0 {
		return
	}
	step := p.done * 10 / p.total
	if step > p.step && step < 10 {
		p.step = step
		_, _ = fmt.Fprintf(p.w, "  %s: %d%%\n", p.name, step*10)
	}
}

func (p *textProgress) Finish() {
	_, _ = fmt.Fprintf(p.w, "  %s: done, %s\n", p.name, humanSize(p.done))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
