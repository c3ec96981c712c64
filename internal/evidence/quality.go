package evidence

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/RameshMYatnalli/new-claimsat/pkg/utils"
)

// ErrInvalidMedia is returned when evidence bytes cannot be decoded.
var ErrInvalidMedia = errors.New("invalid media")

// ImageQuality holds the raw quality signals of a decoded image.
type ImageQuality struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Pixels int `json:"total_pixels"`
	// Sharpness is the variance of the 4-neighbour Laplacian over luminance.
	Sharpness float64 `json:"blur_score"`
	// Brightness is the mean 8-bit luminance.
	Brightness float64 `json:"brightness"`
	// Contrast is the standard deviation of luminance.
	Contrast float64 `json:"contrast"`
	// ColorDiversity is the standard deviation of hue on a 0-180 scale.
	ColorDiversity float64 `json:"color_diversity"`
}

// MaxImagePixels caps the pixel count an image may declare before it is
// decoded. A small compressed file can declare far more pixels than it carries.
const MaxImagePixels = 50_000_000

// AnalyzeImage decodes data as a JPEG or PNG and measures its quality signals.
// Images declaring more than MaxImagePixels are rejected before decoding.
func AnalyzeImage(data []byte) (*ImageQuality, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidMedia)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrInvalidMedia, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidMedia)
	}

	// Luminance is kept at one byte per pixel for the Laplacian; everything
	// else is accumulated as running sums.
	gray := make([]uint8, w*h)
	var lum, hue moments
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r, g, bl := float64(r16>>8), float64(g16>>8), float64(b16>>8)
			v := math.Min(255, math.Round(0.299*r+0.587*g+0.114*bl))
			gray[y*w+x] = uint8(v)
			lum.add(v)
			hue.add(hue180(r, g, bl))
		}
	}

	return &ImageQuality{
		Width:          w,
		Height:         h,
		Pixels:         w * h,
		Sharpness:      laplacianVariance(gray, w, h),
		Brightness:     lum.mean(),
		Contrast:       lum.stdDev(),
		ColorDiversity: hue.stdDev(),
	}, nil
}

// moments accumulates the count, sum, and sum of squares of a sample.
type moments struct {
	n, sum, sumSq float64
}

func (m *moments) add(v float64) {
	m.n++
	m.sum += v
	m.sumSq += v * v
}

func (m *moments) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / m.n
}

// variance is the population variance.
func (m *moments) variance() float64 {
	if m.n == 0 {
		return 0
	}
	mu := m.mean()
	return math.Max(0, m.sumSq/m.n-mu*mu)
}

func (m *moments) stdDev() float64 { return math.Sqrt(m.variance()) }

// reflect101 mirrors an out-of-range index without repeating the edge sample.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// laplacianVariance is the variance of the 4-neighbour Laplacian response.
func laplacianVariance(gray []uint8, w, h int) float64 {
	at := func(x, y int) float64 {
		return float64(gray[reflect101(y, h)*w+reflect101(x, w)])
	}
	var resp moments
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			resp.add(at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y))
		}
	}
	return resp.variance()
}

// hue180 returns the HSV hue of an 8-bit RGB pixel halved to fit 0-180.
func hue180(r, g, b float64) float64 {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC
	if delta == 0 {
		return 0
	}
	var h float64
	switch maxC {
	case r:
		h = 60 * (g - b) / delta
	case g:
		h = 120 + 60*(b-r)/delta
	default:
		h = 240 + 60*(r-g)/delta
	}
	if h < 0 {
		h += 360
	}
	return math.Round(h / 2)
}

type band struct {
	score float64
	label string
}

func sharpnessBand(v float64) band {
	switch {
	case v > 500:
		return band{0.9, "sharp focus"}
	case v > 200:
		return band{0.7, "moderate focus"}
	case v > 50:
		return band{0.5, "slightly blurry"}
	default:
		return band{0.2, "very blurry"}
	}
}

func brightnessBand(v float64) band {
	switch {
	case v >= 50 && v <= 200:
		return band{0.9, "good lighting"}
	case v >= 30 && v <= 220:
		return band{0.6, "acceptable lighting"}
	default:
		return band{0.3, "poor lighting"}
	}
}

func contrastBand(v float64) band {
	switch {
	case v > 50:
		return band{0.9, "high detail"}
	case v > 30:
		return band{0.7, "moderate detail"}
	default:
		return band{0.4, "low detail"}
	}
}

func resolutionBand(pixels int) band {
	switch {
	case pixels > 2_000_000:
		return band{0.9, "high resolution"}
	case pixels > 500_000:
		return band{0.7, "adequate resolution"}
	default:
		return band{0.4, "low resolution"}
	}
}

// RelevanceFromQuality maps quality signals to a 0-1 score: the mean of the
// sharpness, brightness, contrast, and resolution bands.
func RelevanceFromQuality(q *ImageQuality) (float64, string) {
	bands := []band{
		sharpnessBand(q.Sharpness),
		brightnessBand(q.Brightness),
		contrastBand(q.Contrast),
		resolutionBand(q.Pixels),
	}
	scores := make([]float64, len(bands))
	labels := make([]string, len(bands))
	for i, b := range bands {
		scores[i] = b.score
		labels[i] = b.label
	}
	return utils.Mean(scores), "Image quality: " + strings.Join(labels, ", ") +
		". Visual relevance indicates likelihood of genuine outdoor/structural photo, not damage detection."
}

// VisualRelevanceScore rates how much data looks like a genuine photograph.
// Undecodable input scores 0 with the reason in the explanation.
func VisualRelevanceScore(data []byte) (float64, string) {
	q, err := AnalyzeImage(data)
	if err != nil {
		return 0, "Invalid or corrupted image: " + err.Error()
	}
	return RelevanceFromQuality(q)
}

// VideoQuality rates a video by file size; larger files suggest longer genuine footage.
func VideoQuality(data []byte) (float64, string) {
	mb := float64(len(data)) / (1024 * 1024)
	switch {
	case mb > 5:
		return 0.95, "High-quality video evidence (large file size suggests genuine footage)"
	case mb > 1:
		return 0.85, "Good video evidence (adequate duration and quality)"
	case mb > 0.5:
		return 0.75, "Acceptable video evidence (short duration or compressed)"
	default:
		return 0.6, "Low-quality video (very short or heavily compressed)"
	}
}
