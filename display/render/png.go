// Package render exports the history histogram as an image and previews it
// inline in terminals that support an image protocol.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"

	dcolor "gitlab.com/tinyland/lab/transparency/display/color"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// ErrEmptyHistory is returned when there is nothing to draw.
var ErrEmptyHistory = errors.New("render: history is empty")

// ExportOptions control the exported image geometry.
type ExportOptions struct {
	// BarWidth is the width of one sample column in pixels.
	BarWidth int
	// Gap is the spacing between columns and around the edges.
	Gap int
	// Height is the plot height in pixels, excluding the margins.
	Height int
	// Background is the "#RRGGBB" color the bars are drawn over.
	Background string
}

// DefaultExportOptions returns the geometry used by the overlay.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		BarWidth:   6,
		Gap:        2,
		Height:     160,
		Background: "#1E1B2E",
	}
}

func (o ExportOptions) withDefaults() ExportOptions {
	d := DefaultExportOptions()
	if o.BarWidth <= 0 {
		o.BarWidth = d.BarWidth
	}
	if o.Gap < 0 {
		o.Gap = d.Gap
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	return o
}

// HistogramImage draws samples (newest first, newest at the left) as
// vertical bars scaled against max. Each bar is its tier swatch overlaid on
// the background at the sample's opacity.
func HistogramImage(samples []history.Sample, max float64, opts ExportOptions) (*image.NRGBA, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyHistory
	}
	opts = opts.withDefaults()

	bg, err := nrgba(opts.Background)
	if err != nil {
		return nil, err
	}

	width := len(samples)*(opts.BarWidth+opts.Gap) + opts.Gap
	height := opts.Height + 2*opts.Gap
	img := imaging.New(width, height, bg)

	for i, s := range samples {
		h := barHeight(s.Magnitude, max, opts.Height)
		fill, err := nrgba(string(tier.Style(s.Tier).Color))
		if err != nil {
			return nil, err
		}
		bar := imaging.New(opts.BarWidth, h, fill)
		x := opts.Gap + i*(opts.BarWidth+opts.Gap)
		y := opts.Gap + opts.Height - h
		img = imaging.Overlay(img, bar, image.Pt(x, y), s.Opacity)
	}
	return img, nil
}

// ExportPNG writes the histogram to path and returns the path written. A
// path without an extension gets ".png".
func ExportPNG(samples []history.Sample, max float64, path string, opts ExportOptions) (string, error) {
	img, err := HistogramImage(samples, max, opts)
	if err != nil {
		return "", err
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("render: save %s: %w", path, err)
	}
	return path, nil
}

// EncodePNG returns the PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// barHeight maps magnitude/max onto [1, plot] pixels.
func barHeight(magnitude, max float64, plot int) int {
	if max <= 0 || math.IsNaN(magnitude) {
		return 1
	}
	frac := math.Max(0, math.Min(1, magnitude/max))
	h := int(math.Round(frac * float64(plot)))
	if h < 1 {
		h = 1
	}
	return h
}

func nrgba(hex string) (color.NRGBA, error) {
	c, err := dcolor.Parse(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
