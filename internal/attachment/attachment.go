// Package attachment checks that an uploaded file is an image the vision
// model can read.
package attachment

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoders for DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/floorplan-layout/analyzer/internal/result"
)

// Attachment is one uploaded file.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// Info describes a checked image.
type Info struct {
	MimeType string
	Format   string
	Width    int
	Height   int
}

// Check reports result.ErrNoAttachment for a nil or empty attachment and
// result.ErrNotImage when the declared type is not image/* or the bytes do
// not decode as an image. A missing MimeType is sniffed from the data.
func Check(a *Attachment) (Info, error) {
	if a == nil || len(a.Data) == 0 {
		return Info{}, result.ErrNoAttachment
	}
	mimeType := a.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(a.Data)
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return Info{}, fmt.Errorf("%w: %s", result.ErrNotImage, mimeType)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", result.ErrNotImage, err)
	}
	return Info{MimeType: mimeType, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Load reads a file from disk into an Attachment, guessing the MIME type
// from its content.
func Load(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
			mimeType = t
		}
	}
	return &Attachment{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}, nil
}
