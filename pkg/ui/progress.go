package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// Progress keeps track of a download run
type Progress struct {
	Total     int
	Saved     int
	Failed    int
	StartTime time.Time
}

// NewProgress creates a tracker for total links
func NewProgress(total int) *Progress {
	return &Progress{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Record counts one finished link
func (p *Progress) Record(saved bool) {
	if saved {
		p.Saved++
	} else {
		p.Failed++
	}
}

// Done returns the number of finished links
func (p *Progress) Done() int {
	return p.Saved + p.Failed
}

// Bar returns a formatted progress bar of the given width
func (p *Progress) Bar(width int) string {
	filled := 0
	if p.Total > 0 {
		filled = p.Done() * width / p.Total
	}
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, p.Done(), p.Total)
}

// Elapsed returns the time since tracking started
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.StartTime)
}

// Rate returns finished links per minute
func (p *Progress) Rate() float64 {
	elapsed := p.Elapsed().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(p.Done()) / elapsed
}
