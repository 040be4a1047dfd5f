package artifact

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"country-cache/internal/countries/domain/model"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imageWidth  = 800
	imageHeight = 600

	marginX    = 20
	lineHeight = 28
)

// PNGRenderer renders the cache summary snapshot as a PNG image.
type PNGRenderer struct {
	face font.Face
}

// NewPNGRenderer creates a renderer using the built-in bitmap face.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{face: basicfont.Face7x13}
}

// Render produces the summary image: cache total, refresh timestamp and
// the top-5 list by estimated GDP. A nil GDP renders as "N/A", never as
// zero or blank.
func (r *PNGRenderer) Render(total int64, top5 []model.GDPEntry, refreshedAt time.Time) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := 40
	r.drawText(img, marginX, y, fmt.Sprintf("Countries cached: %d", total))
	y += lineHeight + 12
	r.drawText(img, marginX, y, fmt.Sprintf("Last refresh: %s", refreshedAt.Format(time.RFC3339)))
	y += lineHeight + 12
	r.drawText(img, marginX, y, "Top 5 Countries by estimated GDP:")
	y += lineHeight

	for idx, entry := range top5 {
		gdp := "N/A"
		if entry.EstimatedGDP != nil {
			gdp = formatGDP(*entry.EstimatedGDP)
		}
		r.drawText(img, marginX+10, y, fmt.Sprintf("%d. %s - %s", idx+1, entry.Name, gdp))
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode summary image: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) drawText(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// formatGDP renders a GDP figure with thousands separators and two
// decimals, e.g. 1,234,567.89.
func formatGDP(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	b.WriteString(sign)
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteString(fracPart)
	return b.String()
}
