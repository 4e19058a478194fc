package transcode

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoding
)

const (
	// MaxWidth bounds the output width so a single request cannot make
	// the process allocate an arbitrarily large bitmap.
	MaxWidth = 2000

	MinQuality = 10
	MaxQuality = 100

	// FallbackQuality is used when a requested format fails to encode
	// and the pipeline retries with webp.
	FallbackQuality = 75
)

// NormalizeFormat maps a caller supplied format string to one of the
// supported output formats. jpg is an alias of jpeg; anything unknown
// becomes webp.
func NormalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "jpeg"
	case "png":
		return "png"
	default:
		return "webp"
	}
}

// ContentTypeFor returns the MIME type for a normalized format.
func ContentTypeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "image/webp"
	}
}

// ExtensionFor returns the on-disk file extension for a normalized
// format.
func ExtensionFor(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "png":
		return "png"
	default:
		return "webp"
	}
}

// ClampQuality forces quality into the supported [10,100] range.
func ClampQuality(quality int) int {
	if quality < MinQuality {
		return MinQuality
	}
	if quality > MaxQuality {
		return MaxQuality
	}
	return quality
}

// ClampWidth forces width into [0, MaxWidth]. Zero means no resize.
func ClampWidth(width int) int {
	if width < 0 {
		return 0
	}
	if width > MaxWidth {
		return MaxWidth
	}
	return width
}

// Transcode re-encodes src into the requested format, resizing to width
// when width > 0. The source is never enlarged: a width wider than the
// source keeps the native size. Returns the encoded bytes together with
// the format that actually got produced: when the requested format
// fails to encode, a single retry forcing webp is attempted, and the
// caller must use the returned format for both cache key and
// Content-Type.
func Transcode(src []byte, width, quality int, format string) ([]byte, string, error) {
	format = NormalizeFormat(format)
	width = ClampWidth(width)
	quality = ClampQuality(quality)

	out, err := encode(src, width, quality, format)
	if err == nil {
		return out, format, nil
	}

	if format != "webp" {
		out, fallbackErr := encode(src, width, FallbackQuality, "webp")
		if fallbackErr == nil {
			return out, "webp", nil
		}
	}

	return nil, "", fmt.Errorf("transcode to %s failed: %w", format, err)
}

func encode(src []byte, width, quality int, format string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(pngLevelFor(quality)))
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// pngLevelFor derives a compression level from the quality knob. PNG is
// lossless, so quality maps to encoder effort: low quality means the
// caller cares about size, high quality means speed.
func pngLevelFor(quality int) png.CompressionLevel {
	switch {
	case quality < 40:
		return png.BestCompression
	case quality < 85:
		return png.DefaultCompression
	default:
		return png.BestSpeed
	}
}
