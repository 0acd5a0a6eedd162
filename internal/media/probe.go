package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os/exec"
	"strconv"
	"time"
)

// thumbMaxBytes caps generated thumbnails. The Bot API rejects larger ones,
// so oversized output is discarded rather than attached.
const thumbMaxBytes = 200_000

// defaultProbeTimeout bounds each subprocess invocation. Probing is
// best-effort and must not stall the whole run on a corrupt file.
const defaultProbeTimeout = 30 * time.Second

// Prober extracts optional metadata for media files. A (nil, nil) return
// means "no metadata": the tool is missing or could not handle the file.
// Neither case aborts the batch.
type Prober interface {
	// ProbeVideo returns duration/dimensions and a thumbnail for a video.
	ProbeVideo(ctx context.Context, path string) (*Metadata, error)
	// ScaleThumbnail returns a down-scaled JPEG preview of a still image.
	ScaleThumbnail(ctx context.Context, path string) ([]byte, error)
}

// ExecProber shells out to ffprobe and ffmpeg. Tool absence is a skip, not
// an error; it only shows up at debug level.
type ExecProber struct {
	Logger  *slog.Logger
	Rand    *rand.Rand    // thumbnail timestamp source
	Timeout time.Duration // per-invocation; defaultProbeTimeout when zero
}

func (p *ExecProber) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return defaultProbeTimeout
}

// ffprobeOutput mirrors the parts of `ffprobe -of json` output we read.
// Duration arrives as a JSON string in practice, but numbers occur too.
type ffprobeOutput struct {
	Streams []struct {
		Width    int             `json:"width"`
		Height   int             `json:"height"`
		Duration json.RawMessage `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration json.RawMessage `json:"duration"`
	} `json:"format"`
}

// parseDuration accepts both string and numeric ffprobe duration values.
func parseDuration(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := strconv.ParseFloat(s, 64)
		return d, err == nil
	}
	var d float64
	if err := json.Unmarshal(raw, &d); err == nil {
		return d, true
	}
	return 0, false
}

// ProbeVideo runs ffprobe for stream dimensions and duration, then grabs a
// thumbnail frame at a random timestamp within the video.
func (p *ExecProber) ProbeVideo(ctx context.Context, path string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			p.Logger.Debug("ffprobe not found, skipping video metadata extraction")
			return nil, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.Logger.Debug("ffprobe failed", "path", path,
				"stderr", string(bytes.TrimSpace(exitErr.Stderr)))
			return nil, nil
		}
		return nil, fmt.Errorf("probe: run ffprobe: %w", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("probe: parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		p.Logger.Debug("no video stream data found", "path", path)
		return nil, nil
	}
	stream := probed.Streams[0]

	seconds, ok := parseDuration(stream.Duration)
	if !ok {
		seconds, ok = parseDuration(probed.Format.Duration)
	}
	if ok && (math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0) {
		seconds = 0
	}

	meta := &Metadata{
		Width:  stream.Width,
		Height: stream.Height,
	}
	if ok {
		meta.Duration = int(math.Floor(seconds))
	}

	// Sample the thumbnail frame uniformly within the video, except for
	// clips of a second or less where the first frame is used.
	at := 0.0
	if ok && seconds > 1 {
		at = p.Rand.Float64() * seconds
	}
	thumb, err := p.grabFrame(ctx, path, at)
	if err != nil {
		p.Logger.Debug("failed to generate video thumbnail", "path", path, "error", err)
	} else {
		meta.Thumbnail = thumb
	}

	return meta, nil
}

// ScaleThumbnail produces a JPEG preview of a still image, longest side
// capped at 320 px with aspect ratio preserved.
func (p *ExecProber) ScaleThumbnail(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	return p.runFFmpeg(ctx, "-v", "error",
		"-i", path,
		"-frames:v", "1",
		"-vf", "scale=320:320:force_original_aspect_ratio=decrease",
		"-f", "mjpeg",
		"pipe:1",
	)
}

func (p *ExecProber) grabFrame(ctx context.Context, path string, at float64) ([]byte, error) {
	return p.runFFmpeg(ctx, "-v", "error",
		"-ss", fmt.Sprintf("%.2f", math.Max(at, 0)),
		"-i", path,
		"-frames:v", "1",
		"-vf", "scale=320:320:force_original_aspect_ratio=decrease",
		"-f", "mjpeg",
		"pipe:1",
	)
}

func (p *ExecProber) runFFmpeg(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "ffmpeg", args...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			p.Logger.Debug("ffmpeg not found, skipping thumbnail generation")
			return nil, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.Logger.Debug("ffmpeg failed",
				"stderr", string(bytes.TrimSpace(exitErr.Stderr)))
			return nil, nil
		}
		return nil, fmt.Errorf("probe: run ffmpeg: %w", err)
	}
	if len(out) == 0 {
		p.Logger.Debug("ffmpeg produced an empty thumbnail")
		return nil, nil
	}
	if len(out) > thumbMaxBytes {
		p.Logger.Debug("generated thumbnail exceeds 200 KB, discarding", "size", len(out))
		return nil, nil
	}
	return out, nil
}

// NopProber extracts nothing. It stands in for ExecProber in tests and when
// probing is disabled.
type NopProber struct{}

func (NopProber) ProbeVideo(context.Context, string) (*Metadata, error) { return nil, nil }
func (NopProber) ScaleThumbnail(context.Context, string) ([]byte, error) { return nil, nil }
