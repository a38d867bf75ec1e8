package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

const jpegQuality = 80

// Processed is an image prepared for upload.
type Processed struct {
	Data        []byte
	Width       int
	Height      int
	Format      string
	ContentType string
	// CompressionRatio is uploaded size over captured size.
	CompressionRatio float64
}

// Process decodes a captured image and re-encodes it as JPEG when that
// makes it smaller. Agents capture lossless PNG, which is far larger than
// needed for review purposes.
func Process(data []byte) (*Processed, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()

	out := data
	outFormat := format
	if format != "jpeg" {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err == nil && buf.Len() < len(data) {
			out = buf.Bytes()
			outFormat = "jpeg"
		}
	}

	contentType := "image/" + outFormat
	return &Processed{
		Data:             out,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		Format:           outFormat,
		ContentType:      contentType,
		CompressionRatio: float64(len(out)) / float64(len(data)),
	}, nil
}
