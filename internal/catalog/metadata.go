package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// MetadataReader derives display names from audio file tags
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Name returns "Artist - Title" from the file's tags, the bare title when no
// artist is tagged, or the file name without extension when the file carries
// no readable tags.
func (r *MetadataReader) Name(filePath string) string {
	fallback := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	file, err := os.Open(filePath)
	if err != nil {
		return fallback
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return fallback
	}

	title := strings.TrimSpace(metadata.Title())
	artist := strings.TrimSpace(metadata.Artist())
	switch {
	case title == "":
		return fallback
	case artist == "":
		return title
	default:
		return artist + " - " + title
	}
}
