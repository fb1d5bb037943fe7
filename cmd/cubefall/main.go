package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine"
	"github.com/Carmen-Shannon/cubefall/engine/renderer"
	"github.com/Carmen-Shannon/cubefall/engine/window"
	"github.com/Carmen-Shannon/cubefall/internal/cubefall"
)

// GLFW and the GPU surface must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		common.Logger().Error("cubefall failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	win, err := window.NewWindow(
		window.WithTitle(cubefall.WindowTitle),
		window.WithSize(cubefall.WindowWidth, cubefall.WindowHeight),
	)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(engine.WithWindow(win))

	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.PresentModeVSync),
		renderer.WithClearColor(common.MustParseColor(cubefall.ClearColor)),
	)
	if err != nil {
		_ = win.Close()
		return err
	}
	// The surface belongs to the window, so the renderer goes first.
	eng.SetCloseCallback(r.Release)
	abort := func(err error) error {
		r.Release()
		_ = win.Close()
		return err
	}

	ctx, err := cubefall.NewContext(r, win.Width(), win.Height())
	if err != nil {
		return abort(err)
	}
	if _, err := cubefall.Generate(ctx, cubefall.DefaultCubeCount); err != nil {
		return abort(err)
	}
	cubefall.Attach(ctx, eng)

	driver := cubefall.NewDriver(ctx, cubefall.WithOnError(func(error) { eng.Quit() }))
	driver.Start(eng)

	if err := eng.Run(); err != nil {
		return err
	}
	return driver.Err()
}
