package main

import (
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/sendtg/sendtg/internal/media"
)

// maxLabelChars keeps bar descriptions from wrapping on narrow terminals.
const maxLabelChars = 24

// progressRenderer turns the engine's upload events into terminal progress
// bars, one per streamed file.
type progressRenderer struct {
	logger *slog.Logger
	mu     sync.Mutex
	bars   map[string]*progressbar.ProgressBar
}

var _ media.Progress = (*progressRenderer)(nil)

func newProgressRenderer(logger *slog.Logger) *progressRenderer {
	return &progressRenderer{
		logger: logger,
		bars:   make(map[string]*progressbar.ProgressBar),
	}
}

// Advance implements media.Progress.
func (p *progressRenderer) Advance(label string, sent, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[label]
	if !ok {
		bar = progressbar.DefaultBytes(total, truncateLabel(label, maxLabelChars))
		p.bars[label] = bar
	}
	_ = bar.Set64(sent)
}

// Done implements media.Progress. The upload stream is drained; what remains
// is the API's server-side processing.
func (p *progressRenderer) Done(label string) {
	p.mu.Lock()
	if bar, ok := p.bars[label]; ok {
		_ = bar.Finish()
		delete(p.bars, label)
	}
	p.mu.Unlock()

	p.logger.Info("waiting for Telegram to process upload", "file", label)
}

func truncateLabel(label string, maxChars int) string {
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars]) + "…"
}
