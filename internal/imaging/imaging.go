// Package imaging validates uploaded pictures and produces the normalized
// JPEG sent for analysis plus a small WebP preview.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxAnalysisEdge bounds the longest side of the image sent to the model.
	MaxAnalysisEdge = 1536
	// PreviewEdge bounds the longest side of the stored preview.
	PreviewEdge = 320
	JPEGQuality = 85
	// MaxSourcePixels bounds width*height of an upload before it is decoded.
	MaxSourcePixels = 40_000_000
	WebPQuality = 70
)

var (
	ErrEmpty           = errors.New("no file uploaded")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("invalid image type")
	ErrUndecodable     = errors.New("invalid image file")
	ErrTooManyPixels   = errors.New("image dimensions too large")
)

// Normalized is an upload after validation and re-encoding.
type Normalized struct {
	JPEG       []byte
	Preview    []byte
	Width      int
	Height     int
	SourceMIME string
	// Hash is the hex SHA-256 of JPEG and doubles as the storage key stem.
	Hash string
}

// Normalize checks size, sniffed type and decodability, then downsizes and re-encodes.
func Normalize(content []byte, maxBytes int64) (*Normalized, error) {
	if len(content) == 0 {
		return nil, ErrEmpty
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, ErrTooLarge
	}

	detected := DetectContentType(content)
	if !IsAllowedMIME(detected) {
		return nil, ErrUnsupportedType
	}

	// Decoding allocates width*height*4 bytes up front, so check the header first.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, ErrUndecodable
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUndecodable
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, ErrTooManyPixels
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, ErrUndecodable
	}

	analysis := ResizeToFit(decoded, MaxAnalysisEdge, MaxAnalysisEdge)
	jpg, err := EncodeJPEG(analysis, JPEGQuality)
	if err != nil {
		return nil, err
	}
	preview, err := EncodeWebP(ResizeToFit(analysis, PreviewEdge, PreviewEdge), WebPQuality)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(jpg)
	b := analysis.Bounds()
	return &Normalized{
		JPEG:       jpg,
		Preview:    preview,
		Width:      b.Dx(),
		Height:     b.Dy(),
		SourceMIME: detected,
		Hash:       hex.EncodeToString(sum[:]),
	}, nil
}

// DetectContentType sniffs the MIME type, recognising WebP which net/http reports generically on older runtimes.
func DetectContentType(content []byte) string {
	if len(content) >= 12 && string(content[0:4]) == "RIFF" && string(content[8:12]) == "WEBP" {
		return "image/webp"
	}
	return NormalizeContentType(http.DetectContentType(content))
}

// IsAllowedMIME reports whether the type is one of the accepted upload formats.
func IsAllowedMIME(contentType string) bool {
	switch NormalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// NormalizeContentType strips parameters and lowercases a media type.
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// ResizeToFit scales src down to fit within the box, keeping the aspect ratio.
// Images already inside the box are returned unchanged.
func ResizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
