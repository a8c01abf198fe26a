package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/render"
)

var (
	hudFPSStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Background(lipgloss.Color("0"))
	hudTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("0"))
	hudStatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Background(lipgloss.Color("0"))
	hudModeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Background(lipgloss.Color("0"))
)

// hud overlays viewer status on top of the rendered frame.
type hud struct {
	title     string
	comparing bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(title string, comparing bool) *hud {
	if comparing {
		title += " (comparison)"
	}
	return &hud{
		title:   title,
		fpsTime: time.Now(),
	}
}

// updateFPS counts a frame; the displayed rate refreshes once a second.
func (h *hud) updateFPS() {
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// render prints the overlay rows directly; the lines clear each frame so
// toggling the HUD off leaves no residue.
func (h *hud) render(width, height int, rig *camera.Rig, ras *render.Rasterizer, show bool) {
	const clearLine = "\x1b[2K"

	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if !show {
		return
	}

	fmt.Print(moveTo(1, 1) + hudFPSStyle.Render(fmt.Sprintf(" %.0f FPS ", h.fps)))

	titleCol := max((width-len(h.title)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + hudTitleStyle.Render(" "+h.title+" "))

	tris := fmt.Sprintf(" %d tris ", ras.Stats.Triangles)
	fmt.Print(moveTo(1, max(width-len(tris), 1)) + hudStatStyle.Render(tris))

	mode := fmt.Sprintf(" %s | %s ", rig.Mode(), rig.Projection())
	if rig.AutoRotateDriver() != nil && rig.AutoRotateDriver().Active() {
		mode = " auto-rotate" + mode
	}
	if ras.Mode == render.ModeWireframe {
		mode += "| wireframe "
	}
	fmt.Print(moveTo(height, 1) + hudModeStyle.Render(mode))
}
