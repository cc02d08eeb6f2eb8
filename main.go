package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/pattern-background/internal/background"
	"github.com/iburimskiy/pattern-background/internal/config"
	"github.com/iburimskiy/pattern-background/internal/game"
)

func main() {
	cfg := config.Default()
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	background.SetLogger(logger)

	g, err := game.New(cfg)
	if err != nil {
		logger.Error("start", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
}
