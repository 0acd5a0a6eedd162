package media

import (
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// photoMaxBytes is the Bot API limit for sendPhoto uploads. Larger images
// still go through, but as documents.
const photoMaxBytes = 10 * 1024 * 1024

// sniffLen is how much of the file header the content sniffer reads when the
// extension lookup comes up empty.
const sniffLen = 512

// DetectMIME resolves a MIME type for path: extension lookup first, content
// sniffing of the file header as a fallback. Returns "" when neither works.
func DetectMIME(path string) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		if base, _, ok := strings.Cut(mt, ";"); ok {
			return strings.TrimSpace(base)
		}
		return mt
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ""
	}
	mt := mimetype.Detect(buf[:n])
	if mt.Is("application/octet-stream") {
		// The sniffer's fallback type carries no signal.
		return ""
	}
	return mt.String()
}

// KindForMIME maps a MIME type to a media kind. Unresolved or unrecognized
// types become documents.
func KindForMIME(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindPhoto
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return KindAudio
	default:
		return KindDocument
	}
}

// Classifier maps file paths to media kinds.
type Classifier struct {
	// AsFile forces every classification to KindDocument.
	AsFile bool
	Logger *slog.Logger
}

// Classify determines the kind for path. The caller guarantees path is a
// regular file. The photo size downgrade is applied here: photos over 10 MiB,
// and photos whose size cannot be read, are sent as documents instead.
func (c *Classifier) Classify(path string) Kind {
	if c.AsFile {
		return KindDocument
	}

	kind := KindForMIME(DetectMIME(path))
	if kind != KindPhoto {
		return kind
	}

	info, err := os.Stat(path)
	if err != nil {
		c.Logger.Error("failed to read photo size, sending as document",
			"path", path, "error", err)
		return KindDocument
	}
	if info.Size() > photoMaxBytes {
		c.Logger.Info("photo exceeds 10 MiB, sending as document",
			"path", path, "size", humanize.Bytes(uint64(info.Size())))
		return KindDocument
	}
	return KindPhoto
}
