package media

import (
	"fmt"
	"io"
	"os"
)

// Progress receives upload accounting events as file bytes are streamed into
// an outgoing request. Implementations render them (progress bar, log lines);
// the engine only emits.
type Progress interface {
	// Advance reports that sent of total bytes have been streamed for label.
	Advance(label string, sent, total int64)
	// Done reports that label's stream is exhausted and the API is now
	// processing the upload. Called exactly once per reader.
	Done(label string)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) Advance(string, int64, int64) {}
func (NopProgress) Done(string)                  {}

// Reader streams a file while reporting upload progress. It changes no
// transfer semantics: reads pass straight through to the underlying file.
type Reader struct {
	file     *os.File
	label    string
	total    int64
	sent     int64
	progress Progress
	done     bool
}

// OpenReader opens path for a progress-tracked upload. The label identifies
// the stream in progress events, usually the display file name.
func OpenReader(path, label string, progress Progress) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("media: open %s for upload: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("media: stat %s: %w", path, err)
	}
	r := &Reader{
		file:     f,
		label:    label,
		total:    info.Size(),
		progress: progress,
	}
	if r.total == 0 {
		r.done = true
	}
	return r, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.progress.Advance(r.label, r.sent, r.total)
	}
	if err == io.EOF {
		r.finish()
	}
	return n, err
}

// Close closes the underlying file. The terminal event still fires if the
// request was abandoned before the stream was drained.
func (r *Reader) Close() error {
	r.finish()
	return r.file.Close()
}

func (r *Reader) finish() {
	if r.done {
		return
	}
	r.done = true
	r.progress.Done(r.label)
}
