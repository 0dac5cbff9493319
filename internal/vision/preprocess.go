package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	// Registered decoders: uploads are limited to PNG and JPEG.
	_ "image/jpeg"
)

// FixedCutoff is the intensity cutoff used ahead of the cloud vision service.
const FixedCutoff = 150

// MaxVisionSide caps the longer edge of images sent to the vision service.
const MaxVisionSide = 2048

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Policy picks the binarization cutoff for a grayscale image. Pixels strictly
// brighter than the cutoff become white, all others black.
type Policy interface {
	Threshold(gray *image.Gray) uint8
}

type fixedPolicy uint8

func (p fixedPolicy) Threshold(*image.Gray) uint8 { return uint8(p) }

// FixedThreshold returns a policy with a constant cutoff.
func FixedThreshold(cutoff uint8) Policy {
	return fixedPolicy(cutoff)
}

type otsuPolicy struct{}

func (otsuPolicy) Threshold(gray *image.Gray) uint8 { return otsu(histogram(gray)) }

// OtsuThreshold returns a policy that picks the cutoff maximizing the
// between-class variance of the image histogram.
func OtsuThreshold() Policy {
	return otsuPolicy{}
}

// Decode reads a PNG or JPEG image. The returned string is the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode image failed: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, "", ErrUnsupportedFormat
	}
	return img, format, nil
}

// Grayscale converts img to 8-bit luma using the ITU-R 601 weights.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return out
}

// Binarize returns a same-size image whose pixels are all 0 or 255.
func Binarize(img image.Image, policy Policy) *image.Gray {
	gray := Grayscale(img)
	cutoff := policy.Threshold(gray)

	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := gray.GrayAt(x, y).Y
			if v > cutoff {
				gray.SetGray(x, y, color.Gray{Y: 255})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return gray
}

// FitWithin scales img down so neither side exceeds maxSide, keeping the
// aspect ratio. Images already small enough are returned as is.
func FitWithin(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodePNG serializes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png failed: %w", err)
	}
	return buf.Bytes(), nil
}

func histogram(gray *image.Gray) [256]int {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}
	return hist
}

// otsu returns the smallest cutoff with maximal between-class variance. A
// uniform image yields 0.
func otsu(hist [256]int) uint8 {
	var total, sumAll float64
	for i, n := range hist {
		total += float64(n)
		sumAll += float64(i) * float64(n)
	}
	if total == 0 {
		return 0
	}

	var (
		best     uint8
		bestVar  float64
		weightBg float64
		sumBg    float64
	)
	for t := 0; t < 256; t++ {
		weightBg += float64(hist[t])
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])
		meanBg := sumBg / weightBg
		meanFg := (sumAll - sumBg) / weightFg
		between := weightBg * weightFg * (meanBg - meanFg) * (meanBg - meanFg)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}
