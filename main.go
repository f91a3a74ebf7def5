package main

import (
	"log"

	"duskgrid/internal/config"
	"duskgrid/internal/game"
	"duskgrid/internal/lightmap"
	"duskgrid/internal/logger"
	"duskgrid/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.MustLoadConfig("config.yaml")

	zl := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		Console:    true,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})
	defer func() { _ = zl.Sync() }()

	tiles, err := world.LoadTileSet(cfg.World.TilesFile)
	if err != nil {
		zl.Fatal("failed to load tile definitions", zap.Error(err))
	}

	region, err := world.LoadRegion(cfg, tiles, zl)
	if err != nil {
		zl.Fatal("failed to load region", zap.Error(err))
	}

	engine, err := lightmap.New(cfg, region, zl)
	if err != nil {
		zl.Fatal("failed to build lighting engine", zap.Error(err))
	}
	defer engine.Close()

	// Set window properties from config
	ebiten.SetWindowSize(cfg.GetScreenWidth(), cfg.GetScreenHeight())
	ebiten.SetWindowTitle(cfg.Display.WindowTitle)
	if cfg.Display.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	g := game.New(cfg, region, engine, zl)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
