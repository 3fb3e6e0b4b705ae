package cli

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressObserver draws one bar per table, advanced as pages commit.
// Tables are copied one after another, so only one bar is live at a time.
type progressObserver struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

func (p *progressObserver) TablePlanned(table string, rows, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finishLocked()
	if rows == 0 {
		return
	}
	p.bar = progressbar.NewOptions(rows,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(table),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func (p *progressObserver) PageFetched(string, int, int) {}

func (p *progressObserver) PageWritten(_ string, _ int, rows int, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Add(rows)
	}
}

func (p *progressObserver) PageFailed(table string, _ int, _ error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Describe(table + " (failed)")
	}
}

// Close finishes the last bar.
func (p *progressObserver) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *progressObserver) finishLocked() {
	if p.bar != nil {
		_ = p.bar.Finish()
		_, _ = io.WriteString(p.out, "\n")
		p.bar = nil
	}
}
