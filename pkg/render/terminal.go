package render

import (
	"fmt"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw presents the framebuffer on a terminal screen using the upper half
// block: every cell covers two vertically stacked pixels, the top one as
// the foreground color and the bottom one as the background. area is in
// terminal cells, so the framebuffer should be twice as tall as the area
// it fills.
func (r *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		if topY >= r.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X && col < r.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(r.GetPixel(col, topY)),
					Bg: rgbaToColor(r.GetPixel(col, topY+1)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor widens to the color.Color interface, mapping fully
// transparent pixels to no color so the terminal's own background shows
// through.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is the RGBA pixel type used throughout the renderer.
type Color = color.RGBA

// Palette shared by the debug overlay and the wireframe path.
var (
	ColorBlack  = color.RGBA{0, 0, 0, 255}
	ColorWhite  = color.RGBA{255, 255, 255, 255}
	ColorRed    = color.RGBA{255, 0, 0, 255}
	ColorGreen  = color.RGBA{0, 255, 0, 255}
	ColorBlue   = color.RGBA{0, 0, 255, 255}
	ColorYellow = color.RGBA{255, 255, 0, 255}
	ColorGray   = color.RGBA{128, 128, 128, 255}
)

// RGB builds an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA builds a color with an explicit alpha.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// ParseColor parses an opaque color from an "R,G,B" triple with each
// component in 0..255, the format the viewer's background flag accepts.
func ParseColor(s string) (Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGB(r, g, b), nil
}
