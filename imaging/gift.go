package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/gift"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	_ "golang.org/x/image/webp"
)

const (
	// backgroundTolerance is the RGB distance from the sampled border color
	// under which a pixel counts as background.
	backgroundTolerance = 60
	borderDivisor       = 40
	minBorderWidth      = 2
	blurDivisor         = 20
)

// Detector returns the regions of img that hold a face.
type Detector func(img image.Image) []image.Rectangle

// WholeFrameDetector reports the whole frame as the only subject. Real face
// detection is left to an external detector plugged in through Detector.
func WholeFrameDetector(img image.Image) []image.Rectangle {
	return []image.Rectangle{img.Bounds()}
}

// GiftProcessor is a Processor that edits images in memory with gift and
// writes PNG results into outDir.
type GiftProcessor struct {
	outDir string
	detect Detector
	logger *logger.Logger
}

// NewGiftProcessor writes saved faces to outDir. A nil detect means
// WholeFrameDetector.
func NewGiftProcessor(outDir string, detect Detector, log *logger.Logger) *GiftProcessor {
	if detect == nil {
		detect = WholeFrameDetector
	}
	return &GiftProcessor{outDir: outDir, detect: detect, logger: log}
}

func (p *GiftProcessor) DetectFaces(ctx context.Context, path string) ([]Face, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	stem := stemOf(path)
	faces := make([]Face, 0)
	for i, rect := range p.detect(img) {
		rect = rect.Intersect(img.Bounds())
		if rect.Empty() {
			continue
		}
		faces = append(faces, &giftFace{
			proc: p,
			stem: fmt.Sprintf("%s_face%d", stem, i),
			img:  cropNRGBA(img, rect),
		})
	}

	p.logger.Debug("Imaging: faces detected", "path", path, "count", len(faces))
	return faces, nil
}

func (p *GiftProcessor) Open(ctx context.Context, path string) (Face, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return &giftFace{proc: p, stem: stemOf(path), img: cropNRGBA(img, img.Bounds())}, nil
}

type giftFace struct {
	proc       *GiftProcessor
	stem       string
	img        *image.NRGBA
	background *ColorPair
	contour    bool
	border     color.Color
	blur       int
	path       string
}

// Resize scales the subject so its long edge is size pixels.
func (f *giftFace) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("resize: size must be positive, got %d", size)
	}

	b := f.img.Bounds()
	var filter gift.Filter
	if b.Dx() >= b.Dy() {
		filter = gift.Resize(size, 0, gift.LanczosResampling)
	} else {
		filter = gift.Resize(0, size, gift.LanczosResampling)
	}
	f.img = apply(f.img, filter)
	return nil
}

// RemoveBackground keys out the color sampled along the image border.
func (f *giftFace) RemoveBackground() error {
	key := borderColor(f.img)
	b := f.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := f.img.NRGBAAt(x, y)
			if colorDistance(c, key) <= backgroundTolerance {
				c.A = 0
				f.img.SetNRGBA(x, y, c)
			}
		}
	}
	return nil
}

func (f *giftFace) SetBackground(colors ColorPair) error {
	if colors[0] == nil || colors[1] == nil {
		return fmt.Errorf("background: two colors required")
	}
	f.background = &colors
	return nil
}

// ApplyContour crops to a centred square; the circular mask is applied on save.
func (f *giftFace) ApplyContour() error {
	b := f.img.Bounds()
	side := min(b.Dx(), b.Dy())
	f.img = apply(f.img, gift.CropToSize(side, side, gift.CenterAnchor))
	f.contour = true
	return nil
}

func (f *giftFace) SetBorder(c color.Color) error {
	f.border = c
	return nil
}

func (f *giftFace) SetBlur(strength int) error {
	if strength < 0 {
		return fmt.Errorf("blur: strength must not be negative, got %d", strength)
	}
	f.blur = strength
	return nil
}

func (f *giftFace) Save(retention time.Duration) error {
	out, err := os.CreateTemp(f.proc.outDir, f.stem+"-*.png")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := png.Encode(out, f.render()); err != nil {
		out.Close()
		os.Remove(out.Name())
		return fmt.Errorf("failed to encode picture: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return fmt.Errorf("failed to write picture: %w", err)
	}

	f.path = out.Name()
	if retention > 0 {
		path := f.path
		log := f.proc.logger
		time.AfterFunc(retention, func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Warn("Imaging: failed to remove temporary picture", "path", path, "error", err)
			}
		})
	}
	return nil
}

func (f *giftFace) Path() string {
	return f.path
}

func (f *giftFace) render() *image.NRGBA {
	b := f.img.Bounds()
	subject := f.img
	if f.blur > 0 {
		subject = featherAlpha(subject, float32(f.blur)/blurDivisor)
	}

	canvas := image.NewNRGBA(b)
	if f.background != nil {
		drawGradient(canvas, *f.background)
	}
	draw.Draw(canvas, b, subject, b.Min, draw.Over)

	if f.contour {
		side := min(b.Dx(), b.Dy())
		maskCircle(canvas)
		if f.border != nil {
			drawRing(canvas, f.border, max(minBorderWidth, side/borderDivisor))
		}
	} else if f.border != nil {
		drawFrame(canvas, f.border, max(minBorderWidth, min(b.Dx(), b.Dy())/borderDivisor))
	}

	return canvas
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cropNRGBA(img image.Image, rect image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func apply(src *image.NRGBA, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

func borderColor(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	var r, g, bl, n int
	add := func(x, y int) {
		c := img.NRGBAAt(x, y)
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		add(b.Min.X, y)
		add(b.Max.X-1, y)
	}
	if n == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 255}
}

func colorDistance(a, b color.NRGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// featherAlpha blurs only the alpha channel so cut-out edges fade smoothly.
func featherAlpha(src *image.NRGBA, sigma float32) *image.NRGBA {
	b := src.Bounds()
	alpha := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			alpha.SetGray(x, y, color.Gray{Y: src.NRGBAAt(x, y).A})
		}
	}

	g := gift.New(gift.GaussianBlur(sigma))
	blurred := image.NewGray(g.Bounds(b))
	g.Draw(blurred, alpha)

	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			c.A = blurred.GrayAt(x-b.Min.X, y-b.Min.Y).Y
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

func drawGradient(dst *image.NRGBA, colors ColorPair) {
	from := color.NRGBAModel.Convert(colors[0]).(color.NRGBA)
	to := color.NRGBAModel.Convert(colors[1]).(color.NRGBA)
	b := dst.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y-b.Min.Y) / float64(h-1)
		}
		c := color.NRGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: lerp(from.A, to.A, t),
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// circleDistance returns the distance of pixel (x, y)'s centre from the centre
// of b, and the radius of the inscribed circle.
func circleDistance(b image.Rectangle, x, y int) (float64, float64) {
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	radius := float64(min(b.Dx(), b.Dy())) / 2
	dx := float64(x) + 0.5 - cx
	dy := float64(y) + 0.5 - cy
	return math.Sqrt(dx*dx + dy*dy), radius
}

func maskCircle(dst *image.NRGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if d, r := circleDistance(b, x, y); d > r {
				dst.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
}

func drawRing(dst *image.NRGBA, c color.Color, width int) {
	ring := color.NRGBAModel.Convert(c).(color.NRGBA)
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if d, r := circleDistance(b, x, y); d <= r && d >= r-float64(width) {
				dst.SetNRGBA(x, y, ring)
			}
		}
	}
}

func drawFrame(dst *image.NRGBA, c color.Color, width int) {
	frame := image.NewUniform(c)
	b := dst.Bounds()
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width), frame, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y), frame, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y), frame, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y), frame, image.Point{}, draw.Src)
}
