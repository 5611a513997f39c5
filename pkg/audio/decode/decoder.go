// ABOUTME: Decoder interface and file opener
// ABOUTME: Selects a decoder by file extension
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// Decoder constructs a Source from encoded input
type Decoder interface {
	Decode(r io.Reader) (audio.Source, error)
}

var decoders = map[string]Decoder{
	".mp3":  MP3{},
	".wav":  WAV{},
	".wave": WAV{},
	".ogg":  Vorbis{},
	".oga":  Vorbis{},
	".flac": FLAC{},
	".opus": Opus{Channels: 2},
}

// ForExtension returns the decoder registered for ext (".mp3", ".flac", ...)
func ForExtension(ext string) (Decoder, bool) {
	d, ok := decoders[strings.ToLower(ext)]
	return d, ok
}

// Extensions lists the supported file extensions
func Extensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open decodes the file at path. Closing the source closes the file.
func Open(path string) (audio.Source, error) {
	ext := filepath.Ext(path)
	d, ok := ForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	src, err := d.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return &fileSource{Source: src, file: f}, nil
}

// fileSource closes the underlying file with the decoder
type fileSource struct {
	audio.Source
	file *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
