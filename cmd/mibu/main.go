// Package main is the entry point for the mibu skin painter.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/config"
	"github.com/Faultbox/mibu/internal/engine/camera"
	"github.com/Faultbox/mibu/internal/logger"
	"github.com/Faultbox/mibu/internal/session"
	"github.com/Faultbox/mibu/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()

	logger.Log.Info("=== mibu ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Log.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	am := assets.NewCatalog(cfg.Assets.CatalogDirs, logger.Named("assets"))
	defer am.Close()

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	sess, err := session.New(am, opts, logger.Named("session"))
	if err != nil {
		return err
	}

	// A broken startup model leaves the viewer empty; another can be dropped in
	if err := sess.Open(cfg.Assets.Model); err != nil {
		logger.Log.Error("loading model", zap.String("model", cfg.Assets.Model), zap.Error(err))
	}
	if view, err := camera.ParseView(cfg.View.Preset); err == nil {
		sess.SetView(view)
	} else {
		logger.Log.Warn("ignoring view preset", zap.Error(err))
	}

	v, err := viewer.New(cfg, sess, logger.Named("viewer"))
	if err != nil {
		return err
	}
	defer v.Close()

	return v.Run()
}
