// viewer3d - Terminal 3D Model Viewer
// View glTF/GLB files in your terminal, with orbit controls, projection
// switching and side-by-side comparison of two models.
//
// Controls:
//
//	Mouse drag  - Orbit around the model
//	Scroll      - Zoom in/out
//	Arrow keys  - Pan the view
//	1-6         - Animate to front/back/left/right/top/bottom view
//	O           - Toggle perspective/orthographic projection
//	M           - Toggle orbit/manual rotation mode
//	Space       - Toggle auto-rotation
//	X           - Toggle wireframe mode
//	G           - Toggle ground grid and axes
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/compare"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/models"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/render"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/scene"
)

var (
	targetFPS = flag.Int("fps", 60, "Target FPS")
	bgColor   = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	logPath   = flag.String("log", "", "Write debug logs to this file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "viewer3d - Terminal 3D Model Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: viewer3d [options] <model.glb> [second-model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom\n")
		fmt.Fprintf(os.Stderr, "  Arrow keys  - Pan\n")
		fmt.Fprintf(os.Stderr, "  1-6         - Preset views\n")
		fmt.Fprintf(os.Stderr, "  O           - Projection toggle\n")
		fmt.Fprintf(os.Stderr, "  M           - Orbit/manual mode\n")
		fmt.Fprintf(os.Stderr, "  Space       - Auto-rotate\n")
		fmt.Fprintf(os.Stderr, "  X           - Wireframe\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - HUD\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*log.Logger, func()) {
	if *logPath == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		return log.New(io.Discard), func() {}
	}
	logger := log.New(f)
	logger.SetLevel(log.DebugLevel)
	return logger, func() { f.Close() }
}

func run(paths []string) error {
	logger, closeLog := newLogger()
	defer closeLog()

	bg, err := render.ParseColor(*bgColor)
	if err != nil {
		logger.Warn("invalid background color, using default", "err", err)
		bg = render.RGB(30, 30, 40)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Load before touching the terminal so errors print normally.
	root := scene.NewNode("world")
	validator := scene.NewValidator()
	loaded := make([]*scene.Node, 0, len(paths))
	for _, p := range paths {
		node, err := models.Load(ctx, p)
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, node)
		logger.Info("model loaded", "path", p)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking with SGR extended coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	// Half-block cells give two pixels per terminal row.
	fbWidth, fbHeight := width, height*2
	fb := render.NewFramebuffer(fbWidth, fbHeight)

	rig := camera.NewRig(camera.DefaultConfig(), logger)
	rig.Init(float64(fbWidth) / float64(fbHeight))

	ras := render.NewRasterizer(fb)
	overlay := render.NewOverlay(rig.Active(), fb)
	loop := render.NewLoop(rig, ras, logger)
	defer loop.Dispose()

	// Mount the models and frame the camera.
	var pair *compare.Pair
	positioner := compare.NewPositioner(rig, camera.DefaultConfig().CenterTolerance, logger)
	if len(loaded) == 2 {
		pair, err = positioner.Arrange(root, loaded[0], loaded[1])
		if err != nil {
			cleanup()
			return fmt.Errorf("arrange models: %w", err)
		}
	} else {
		root.AddChild(loaded[0])
		validator.Refresh(root)
		if err := rig.FitToObject(loaded[0].WorldBounds(), nil); err != nil {
			cleanup()
			return fmt.Errorf("fit camera: %w", err)
		}
	}
	defer positioner.Clear(pair)

	hud := newHUD(filepath.Base(paths[0]), len(paths) == 2)

	gridSize := 10.0
	if ext := root.WorldBounds().MaxDimension(); ext > 0 {
		gridSize = ext * 2
	}

	var (
		mouseDown  bool
		lastMouseX int
		lastMouseY int
		showHUD    = true
		showGrid   = false
		panStep    = 4.0
		events     = term.Events()
		quit       = false
	)

	handleEvent := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			fbWidth, fbHeight = width, height*2
			fb = render.NewFramebuffer(fbWidth, fbHeight)
			ras.SetFramebuffer(fb)
			overlay.SetFramebuffer(fb)
			rig.Resize(fbWidth, fbHeight)

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
				quit = true
			case ev.MatchString("1"):
				rig.AnimateToView(camera.ViewFront)
			case ev.MatchString("2"):
				rig.AnimateToView(camera.ViewBack)
			case ev.MatchString("3"):
				rig.AnimateToView(camera.ViewLeft)
			case ev.MatchString("4"):
				rig.AnimateToView(camera.ViewRight)
			case ev.MatchString("5"):
				rig.AnimateToView(camera.ViewTop)
			case ev.MatchString("6"):
				rig.AnimateToView(camera.ViewBottom)
			case ev.MatchString("o"):
				if err := rig.ToggleProjection(); err != nil {
					logger.Warn("projection toggle failed", "err", err)
				}
			case ev.MatchString("m"):
				if rig.Mode() == camera.ModeManual {
					rig.SetMode(camera.ModeOrbit)
				} else {
					rig.SetMode(camera.ModeManual)
				}
			case ev.MatchString("space"):
				rig.SetAutoRotate(!rig.AutoRotateDriver().Active())
			case ev.MatchString("x"):
				if ras.Mode == render.ModeWireframe {
					ras.Mode = render.ModeShaded
				} else {
					ras.Mode = render.ModeWireframe
				}
			case ev.MatchString("g"):
				showGrid = !showGrid
			case ev.MatchString("r"):
				if err := rig.Reset(); err != nil {
					logger.Warn("reset failed", "err", err)
				}
			case ev.MatchString("up"):
				rig.HandlePan(0, panStep)
			case ev.MatchString("down"):
				rig.HandlePan(0, -panStep)
			case ev.MatchString("left"):
				rig.HandlePan(panStep, 0)
			case ev.MatchString("right"):
				rig.HandlePan(-panStep, 0)
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				showHUD = !showHUD
			}

		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y
			rig.SetDragging(true)

		case uv.MouseReleaseEvent:
			mouseDown = false
			rig.SetDragging(false)

		case uv.MouseMotionEvent:
			if mouseDown {
				dx := float64(ev.X - lastMouseX)
				dy := float64(ev.Y - lastMouseY)
				// A cell is two pixels tall, so vertical motion counts double.
				rig.HandleDrag(dx, dy*2)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				rig.HandleWheel(-1)
			case uv.MouseWheelDown:
				rig.HandleWheel(1)
			}
		}
	}

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		// Drain pending input without blocking the frame.
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					break drain
				}
				handleEvent(ev)
			default:
				break drain
			}
		}
		if quit {
			cleanup()
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastFrame)
		lastFrame = now
		if dt > 100*time.Millisecond {
			dt = 100 * time.Millisecond
		}

		fb.Clear(bg)
		if err := loop.RenderFrame(root, dt); err != nil {
			cleanup()
			return fmt.Errorf("render: %w", err)
		}
		if showGrid {
			overlay.SetCamera(rig.Active())
			overlay.DrawGrid(gridSize, gridSize/10, render.ColorGray)
			overlay.DrawAxes(gridSize / 4)
		}

		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		hud.updateFPS()
		hud.render(width, height, rig, ras, showHUD)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
