package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// decodeFunc decodes an open track. The streamer takes ownership of r.
type decodeFunc func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

// decoders is keyed by track kind, the catalog's "type" field
var decoders = map[string]decodeFunc{
	"mp3":  func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(r) },
	"wav":  func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(r) },
	"flac": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(r) },
}

// SupportedFormats returns the file extensions a track may carry
func SupportedFormats() []string {
	formats := make([]string, 0, len(decoders))
	for kind := range decoders {
		formats = append(formats, "."+kind)
	}
	sort.Strings(formats)
	return formats
}

// IsSupported reports whether the file's extension names a decodable kind
func IsSupported(filePath string) bool {
	return supportsKind(kindOf(filePath))
}

func supportsKind(kind string) bool {
	_, ok := decoders[strings.ToLower(kind)]
	return ok
}

func kindOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeAudio decodes r as a track of the given kind. The returned streamer
// owns r and closes it.
func DecodeAudio(r io.ReadSeekCloser, kind string) (beep.StreamSeekCloser, beep.Format, error) {
	decode, ok := decoders[strings.ToLower(kind)]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: %q", playerrors.ErrInvalidFormat, kind)
	}
	return decode(r)
}

// openTrack opens the file at path and decodes it by extension. The file is
// closed when decoding fails.
func openTrack(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err := DecodeAudio(f, kindOf(path))
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}
