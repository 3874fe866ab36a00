package generator

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedMedia is returned for uploads the configured providers
	// cannot read, audio and video included.
	ErrUnsupportedMedia = errors.New("generator: unsupported media type, upload a transcript")
	// ErrEmptySource is returned for an upload without content.
	ErrEmptySource = errors.New("generator: source is empty")
)

// Source is an uploaded transcript.
type Source struct {
	FileName string
	MimeType string
	Data     []byte
}

var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".srt":      {},
	".vtt":      {},
}

// Text checks the upload and returns its content.
func (s Source) Text() (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(s.MimeType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"), strings.HasPrefix(mediaType, "video/"):
		return "", ErrUnsupportedMedia
	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/json", mediaType == "application/x-subrip":
	case mediaType == "", mediaType == "application/octet-stream":
		if _, ok := textExtensions[strings.ToLower(filepath.Ext(s.FileName))]; !ok {
			return "", ErrUnsupportedMedia
		}
	default:
		return "", ErrUnsupportedMedia
	}

	if !utf8.Valid(s.Data) {
		return "", ErrUnsupportedMedia
	}
	text := strings.TrimSpace(string(s.Data))
	if text == "" {
		return "", ErrEmptySource
	}
	return text, nil
}
