package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// fallbackFileName is used when a path yields no usable base name.
const fallbackFileName = "media"

// BuildOptions carries the caller-level flags that shape item construction.
type BuildOptions struct {
	Caption string
	AsFile  bool
	Spoiler bool
}

// BuildItems classifies and annotates the given paths in order. Paths that
// are not regular readable files are dropped with a reported error; the rest
// of the batch proceeds. The caption is assigned to the first item that
// survives classification, spoiler flags are suppressed for kinds that do not
// support them, and each item receives a unique multipart slot name.
func BuildItems(ctx context.Context, paths []string, opts BuildOptions, prober Prober, logger *slog.Logger) []*Item {
	classifier := &Classifier{AsFile: opts.AsFile, Logger: logger}

	items := make([]*Item, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			logger.Error("file not found", "path", path)
			continue
		}

		mimeType := DetectMIME(path)
		kind := classifier.Classify(path)

		item := &Item{
			Kind:     kind,
			Path:     path,
			FileName: displayName(path),
			Spoiler:  opts.Spoiler && kind.AllowsSpoiler(),
			Meta:     extractMetadata(ctx, path, mimeType, prober, logger),
			Slot:     fmt.Sprintf("file%d", len(items)),
		}
		if len(items) == 0 {
			item.Caption = opts.Caption
		}
		items = append(items, item)
	}
	return items
}

// extractMetadata keys off the sniffed MIME type rather than the final kind:
// a photo downgraded to document for size still gets its preview thumbnail,
// and a video forced to document still gets duration and dimensions.
func extractMetadata(ctx context.Context, path, mimeType string, prober Prober, logger *slog.Logger) *Metadata {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		logger.Info("extracting video metadata", "path", path)
		meta, err := prober.ProbeVideo(ctx, path)
		if err != nil {
			logger.Error("failed to extract video metadata", "path", path, "error", err)
			return nil
		}
		if meta != nil {
			logger.Info("video metadata extracted", "path", path)
		}
		return meta
	case strings.HasPrefix(mimeType, "image/"):
		logger.Info("generating photo thumbnail", "path", path)
		thumb, err := prober.ScaleThumbnail(ctx, path)
		if err != nil {
			logger.Error("failed to generate photo thumbnail", "path", path, "error", err)
			return nil
		}
		if thumb == nil {
			return nil
		}
		logger.Info("photo thumbnail generated", "path", path)
		return &Metadata{Thumbnail: thumb}
	default:
		return nil
	}
}

func displayName(path string) string {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallbackFileName
	}
	return name
}
