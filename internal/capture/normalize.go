// Package capture turns raw image input (an uploaded file or a camera frame)
// into the canonical encoded form consumed by the extraction client.
package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxImageBytes is the ceiling for uploaded images, enforced before decoding.
const MaxImageBytes = 4 * 1024 * 1024

const (
	// cropWidthRatio is the fraction of the source width kept by the camera
	// guide-band crop.
	cropWidthRatio = 0.9
	// cropBandHeight matches the on-screen alignment guide the operator
	// frames the form inside.
	cropBandHeight = 200
)

// Sentinel errors for normalization failures.
var (
	ErrSizeExceeded = eris.New("image exceeds size limit")
	ErrDecode       = eris.New("image cannot be decoded")
)

// NormalizedImage is the canonical representation handed to extraction:
// a self-describing data URI plus its MIME type.
type NormalizedImage struct {
	URI      string
	MIMEType string
}

// Base64Data returns the encoded payload without the data URI prefix.
func (n NormalizedImage) Base64Data() string {
	if i := strings.IndexByte(n.URI, ','); i >= 0 {
		return n.URI[i+1:]
	}
	return n.URI
}

// Normalize converts raw image bytes into the canonical form. An input that
// is already a data URI passes through unchanged, so normalization is
// idempotent. Inputs over MaxImageBytes are rejected before any decoding.
func Normalize(raw []byte, mimeType string) (NormalizedImage, error) {
	if bytes.HasPrefix(raw, []byte("data:")) {
		return FromDataURI(string(raw))
	}

	if len(raw) > MaxImageBytes {
		return NormalizedImage{}, eris.Wrapf(ErrSizeExceeded,
			"capture: %d bytes over %d byte limit", len(raw), MaxImageBytes)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return NormalizedImage{}, eris.Wrapf(ErrDecode, "capture: unsupported content type %s", mimeType)
	}

	return NormalizedImage{
		URI:      "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw),
		MIMEType: mimeType,
	}, nil
}

// FromDataURI parses an already-canonical data URI into a NormalizedImage.
// The size ceiling applies to the decoded payload, so an oversized input
// cannot slip through the passthrough path.
func FromDataURI(uri string) (NormalizedImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return NormalizedImage{}, eris.Wrap(ErrDecode, "capture: not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return NormalizedImage{}, eris.Wrap(ErrDecode, "capture: malformed data URI")
	}
	mimeType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mimeType, "image/") {
		return NormalizedImage{}, eris.Wrapf(ErrDecode, "capture: unsupported content type %s", mimeType)
	}
	if decoded := base64.StdEncoding.DecodedLen(len(payload)); decoded > MaxImageBytes {
		return NormalizedImage{}, eris.Wrapf(ErrSizeExceeded,
			"capture: %d bytes over %d byte limit", decoded, MaxImageBytes)
	}
	return NormalizedImage{URI: uri, MIMEType: mimeType}, nil
}

// CropFrame applies the camera guide-band crop to a full-frame snapshot:
// a centered horizontal band 90% of the source width and 200px tall, clamped
// to the source height for short frames. The crop is purely geometric; it
// assumes the operator aligned the form within the on-screen guide. The
// result is re-encoded as JPEG in canonical form.
func CropFrame(img NormalizedImage) (NormalizedImage, error) {
	raw, err := base64.StdEncoding.DecodeString(img.Base64Data())
	if err != nil {
		return NormalizedImage{}, eris.Wrap(ErrDecode, "capture: invalid base64 payload")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return NormalizedImage{}, eris.Wrap(ErrDecode, "capture: decode frame")
	}

	bounds := src.Bounds()
	rect := cropRect(bounds.Dx(), bounds.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min.Add(rect.Min), draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 100}); err != nil {
		return NormalizedImage{}, eris.Wrap(err, "capture: encode cropped frame")
	}

	zap.L().Debug("cropped camera frame",
		zap.Int("source_width", bounds.Dx()),
		zap.Int("source_height", bounds.Dy()),
		zap.Int("crop_width", rect.Dx()),
		zap.Int("crop_height", rect.Dy()),
	)

	return NormalizedImage{
		URI:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		MIMEType: "image/jpeg",
	}, nil
}

// cropRect computes the centered guide-band region for a w×h frame. The band
// height is clamped so the region never extends past the image bounds.
func cropRect(w, h int) image.Rectangle {
	cropW := int(float64(w) * cropWidthRatio)
	if cropW < 1 {
		cropW = w
	}
	cropH := cropBandHeight
	if cropH > h {
		cropH = h
	}
	x0 := (w - cropW) / 2
	y0 := (h - cropH) / 2
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}
