package entry

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DataURI encodes data as a base64 data URI of the given media type.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageMedia builds a media item from raw image bytes. The type is sniffed
// from the content; anything but an image is refused.
func ImageMedia(name string, data []byte) (Media, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Media{}, &ValidationError{
			Field:  "media",
			Reason: fmt.Sprintf("%s is %s, not an image", name, mt.String()),
		}
	}
	mediaType, _, _ := strings.Cut(mt.String(), ";")
	return NewMedia(name, DataURI(mediaType, data)), nil
}

// MediaFromFile reads an image file into a media item named after the file.
func MediaFromFile(path string) (Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Media{}, err
	}
	return ImageMedia(filepath.Base(path), data)
}

// MediaFromFiles reads at most MaxMedia image files.
func MediaFromFiles(paths []string) ([]Media, error) {
	if len(paths) > MaxMedia {
		return nil, &ValidationError{
			Field:  "media",
			Reason: fmt.Sprintf("at most %d images per entry, got %d", MaxMedia, len(paths)),
		}
	}
	var out []Media
	for _, p := range paths {
		m, err := MediaFromFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
