package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
	"strings"
	"time"

	"github.com/park285/chess-archive-insight/internal/stats"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNoPoints = errors.New("rating timeline is empty")

type Options struct {
	Title  string
	Width  int
	Height int
}

const (
	defaultWidth  = 960
	defaultHeight = 540
	marginLeft    = 64
	marginRight   = 24
	marginTop     = 56
	marginBottom  = 72
	eloPadding    = 25
	gridLines     = 4
)

var (
	backgroundHex = "#1c1f2e"
	plotHex       = "#202334"
	gridHex       = "#3a3f58"
	textColor     = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	mutedText     = color.NRGBA{R: 170, G: 178, B: 204, A: 255}

	seriesHex = map[string]string{
		"bullet": "#e4572e",
		"blitz":  "#f3a712",
		"rapid":  "#4cb944",
		"daily":  "#5bc0eb",
	}
	fallbackHex = "#c5c8d6"
)

type series struct {
	timeClass string
	points    []stats.RatingPoint
}

type frame struct {
	width, height  int
	minDay, maxDay time.Time
	minElo, maxElo int
	plotX0, plotY0 float64
	plotX1, plotY1 float64
}

func (f frame) x(t time.Time) float64 {
	span := f.maxDay.Sub(f.minDay)
	if span <= 0 {
		return (f.plotX0 + f.plotX1) / 2
	}
	return f.plotX0 + (f.plotX1-f.plotX0)*float64(t.Sub(f.minDay))/float64(span)
}

func (f frame) y(elo int) float64 {
	span := f.maxElo - f.minElo
	if span <= 0 {
		return (f.plotY0 + f.plotY1) / 2
	}
	return f.plotY1 - (f.plotY1-f.plotY0)*float64(elo-f.minElo)/float64(span)
}

// RenderTimelinePNG draws one line per time class, ordered by date.
func RenderTimelinePNG(ctx context.Context, points []stats.RatingPoint, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	fr := newFrame(points, opts.Width, opts.Height)
	groups := splitSeries(points)

	svg := buildSVG(fr, groups)
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse chart svg: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	icon.SetTarget(0, 0, float64(opts.Width), float64(opts.Height))
	scanner := rasterx.NewScannerGV(opts.Width, opts.Height, img, img.Bounds())
	raster := rasterx.NewDasher(opts.Width, opts.Height, scanner)
	icon.Draw(raster, 1.0)

	drawLabels(img, fr, groups, opts.Title)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newFrame(points []stats.RatingPoint, width, height int) frame {
	fr := frame{
		width:  width,
		height: height,
		minDay: points[0].Date,
		maxDay: points[0].Date,
		minElo: points[0].UserElo,
		maxElo: points[0].UserElo,
		plotX0: marginLeft,
		plotY0: marginTop,
		plotX1: float64(width - marginRight),
		plotY1: float64(height - marginBottom),
	}
	for _, p := range points[1:] {
		if p.Date.Before(fr.minDay) {
			fr.minDay = p.Date
		}
		if p.Date.After(fr.maxDay) {
			fr.maxDay = p.Date
		}
		fr.minElo = min(fr.minElo, p.UserElo)
		fr.maxElo = max(fr.maxElo, p.UserElo)
	}
	fr.minElo -= eloPadding
	fr.maxElo += eloPadding
	return fr
}

// splitSeries keeps timeline order inside each series; series are sorted by name.
func splitSeries(points []stats.RatingPoint) []series {
	idx := map[string]int{}
	var out []series
	for _, p := range points {
		i, ok := idx[p.TimeClass]
		if !ok {
			i = len(out)
			idx[p.TimeClass] = i
			out = append(out, series{timeClass: p.TimeClass})
		}
		out[i].points = append(out[i].points, p)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].timeClass < out[b].timeClass })
	return out
}

func seriesColor(timeClass string) string {
	if hex, ok := seriesHex[timeClass]; ok {
		return hex
	}
	return fallbackHex
}

func buildSVG(fr frame, groups []series) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, fr.width, fr.height, fr.width, fr.height)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, fr.width, fr.height, backgroundHex)
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
		fr.plotX0, fr.plotY0, fr.plotX1-fr.plotX0, fr.plotY1-fr.plotY0, plotHex)

	for i := 0; i <= gridLines; i++ {
		y := fr.plotY0 + (fr.plotY1-fr.plotY0)*float64(i)/gridLines
		fmt.Fprintf(&sb, `<path d="M %.1f %.1f L %.1f %.1f" fill="none" stroke="%s" stroke-width="1"/>`,
			fr.plotX0, y, fr.plotX1, y, gridHex)
	}

	for _, s := range groups {
		hex := seriesColor(s.timeClass)
		if len(s.points) == 1 {
			p := s.points[0]
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>`, fr.x(p.Date), fr.y(p.UserElo), hex)
			continue
		}
		sb.WriteString(`<path d="`)
		for i, p := range s.points {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s %.1f %.1f ", cmd, fr.x(p.Date), fr.y(p.UserElo))
		}
		fmt.Fprintf(&sb, `" fill="none" stroke="%s" stroke-width="2"/>`, hex)
	}

	// legend swatches; the text is drawn afterwards
	for i, s := range groups {
		x := fr.plotX0 + float64(i)*120
		y := float64(fr.height) - 30
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="14" height="14" fill="%s"/>`, x, y-11, seriesColor(s.timeClass))
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func drawLabels(img *image.RGBA, fr frame, groups []series, title string) {
	face := basicfont.Face7x13
	if strings.TrimSpace(title) != "" {
		drawText(img, face, textColor, marginLeft, 32, title)
	}

	for i := 0; i <= gridLines; i++ {
		y := fr.plotY0 + (fr.plotY1-fr.plotY0)*float64(i)/gridLines
		elo := fr.maxElo - (fr.maxElo-fr.minElo)*i/gridLines
		drawText(img, face, mutedText, 8, int(y)+4, fmt.Sprintf("%d", elo))
	}

	const layout = "2006-01-02"
	baseline := int(fr.plotY1) + 20
	drawText(img, face, mutedText, int(fr.plotX0), baseline, fr.minDay.Format(layout))
	last := fr.maxDay.Format(layout)
	drawText(img, face, mutedText, int(fr.plotX1)-textWidth(face, last), baseline, last)

	for i, s := range groups {
		x := int(fr.plotX0) + i*120 + 20
		drawText(img, face, textColor, x, fr.height-20, s.timeClass)
	}
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
