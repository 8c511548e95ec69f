// Package app wires the window, renderer and scene into the viewer's main
// loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/auction-house/internal/assets"
	"github.com/Faultbox/auction-house/internal/config"
	"github.com/Faultbox/auction-house/internal/engine/camera"
	"github.com/Faultbox/auction-house/internal/engine/debug"
	"github.com/Faultbox/auction-house/internal/engine/input"
	"github.com/Faultbox/auction-house/internal/engine/renderer"
	"github.com/Faultbox/auction-house/internal/engine/window"
	"github.com/Faultbox/auction-house/internal/logger"
	"github.com/Faultbox/auction-house/internal/scene"
)

// maxFrameTime caps dt so a stall does not teleport the camera.
const maxFrameTime = 0.25

// App is the viewer instance.
type App struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	registry *renderer.Registry
	assets   *assets.Manager
	watcher  *assets.Watcher
	scene    *scene.Scene
	camera   *camera.FreeCamera

	screenshots       *debug.ScreenshotCapture
	screenshotPending bool
}

// New creates the window, GL state and scene.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("assets", cfg.Scene.AssetsDir),
	)

	a := &App{
		config:   cfg,
		input:    input.New(),
		registry: renderer.NewRegistry(),
		camera:   newCamera(cfg.Camera),

		screenshots: debug.NewScreenshotCapture(cfg.Scene.ScreenshotDir, "auction"),
	}

	var err error
	a.assets, err = assets.NewManager(cfg.Scene.AssetsDir)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	a.window, err = window.New(window.ConfigFrom(cfg.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:   width,
		Height:  height,
		Samples: cfg.Window.Samples,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.scene, err = scene.New(context.Background(), a.assets, a.registry, scene.Config{
		TrainRotationSpeed: cfg.Scene.TrainRotationSpeed,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	if cfg.Scene.WatchAssets {
		a.watcher, err = assets.NewWatcher(assets.DefaultSettle, a.assets.Path("obj"))
		if err != nil {
			// Hot reload is a convenience; the viewer runs without it.
			logger.Warn("asset watching disabled", zap.Error(err))
		}
	}

	logger.Info("viewer initialized successfully")
	return a, nil
}

func newCamera(cfg config.CameraConfig) *camera.FreeCamera {
	cam := camera.NewFreeCamera(mgl32.Vec3(cfg.Position))
	cam.FOV = mgl32.DegToRad(cfg.FOVDegrees)
	cam.Near = cfg.Near
	cam.Far = cfg.Far
	cam.MovementSpeed = cfg.MovementSpeed
	cam.RotationSpeed = cfg.RotationSpeed
	return cam
}

// Run starts the main loop and returns when the window closes.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	fps := fpsCounter{since: lastTime}

	logger.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := frameTime(now.Sub(lastTime))
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		a.moveCamera(dt)

		// 2. Pick up edited meshes
		a.reloadChangedMeshes()

		// 3. Update and render
		a.scene.Update(dt)

		a.renderer.Begin()
		if err := a.scene.Draw(a.renderer, a.camera); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.renderer.End()

		if a.screenshotPending {
			a.screenshotPending = false
			a.takeScreenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		if n, ok := fps.tick(now); ok {
			logger.Debug("fps", zap.Int("count", n), zap.Float32("dt_ms", dt*1000))
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.renderer.Resize(a.window.DrawableSize())
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				a.running = false
			case sdl.SCANCODE_F12:
				a.screenshotPending = !event.Repeat
			}
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				a.camera.BeginDrag(float32(event.MouseX), float32(event.MouseY))
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				a.camera.EndDrag()
			}
		case input.EventMouseMove:
			a.camera.Drag(float32(event.MouseX), float32(event.MouseY))
		}
	}
}

// moveCamera applies held WASD keys. Movement speed is per 60 FPS frame.
func (a *App) moveCamera(dt float32) {
	forward := a.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S)
	right := a.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	if forward == 0 && right == 0 {
		return
	}
	steps := dt * 60
	a.camera.Move(forward*steps, right*steps)
}

// takeScreenshot saves the back buffer before it is swapped.
func (a *App) takeScreenshot() {
	width, height := a.window.DrawableSize()
	path, err := a.screenshots.CaptureFramebuffer(width, height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (a *App) reloadChangedMeshes() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case path := <-a.watcher.Changes():
			if err := a.scene.ReloadMesh(path); err != nil {
				if errors.Is(err, scene.ErrNotSceneMesh) {
					logger.Debug("ignoring change", zap.String("path", path))
					continue
				}
				logger.Warn("mesh reload failed, keeping previous mesh",
					zap.String("path", path),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// Close releases everything New created.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.assets != nil {
		a.assets.Close()
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}

// frameTime converts a frame duration to seconds, capped at maxFrameTime.
func frameTime(d time.Duration) float32 {
	s := d.Seconds()
	if s < 0 {
		return 0
	}
	if s > maxFrameTime {
		return maxFrameTime
	}
	return float32(s)
}

// fpsCounter counts frames and reports once per second.
type fpsCounter struct {
	frames int
	since  time.Time
}

func (f *fpsCounter) tick(now time.Time) (int, bool) {
	f.frames++
	if now.Sub(f.since) < time.Second {
		return 0, false
	}
	n := f.frames
	f.frames = 0
	f.since = now
	return n, true
}
