package agent

import (
	"bytes"
	"image/png"

	"github.com/kbinani/screenshot"

	"github.com/workpulse/workpulse/internal"
)

// Capturer grabs the local screen as PNG bytes.
type Capturer interface {
	Capture() ([]byte, error)
}

// DisplayCapturer captures the primary display. An OS-level denial of the
// screen-recording permission surfaces as a capture error from the
// underlying library and is reported as CaptureDenied.
type DisplayCapturer struct{}

func (DisplayCapturer) Capture() ([]byte, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, internal.ErrCaptureDenied
	}

	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, internal.ErrCaptureDenied.WithCause(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, internal.NewInternalError("failed to encode screen capture", err)
	}
	return buf.Bytes(), nil
}
