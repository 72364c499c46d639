package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/spellserve/internal/userdict"
	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/dictionary/baseline"
	"github.com/bastiangx/spellserve/pkg/suggest"
)

// loadEngine reads the baseline and every user dictionary, in that order.
func loadEngine(ctx context.Context) (*suggest.Engine, error) {
	cfg := app.cfg
	sources := []dictionary.Source{baseline.Source()}

	if app.configDir != "" || cfg.Dict.UserDir != "" {
		dir := cfg.UserDictDir(app.configDir)
		user, loadErrs, err := userdict.LoadDir(ctx, dir, cfg.Dict.Extension, cfg.Dict.LoadWorkers)
		if err != nil {
			return nil, err
		}
		for _, le := range loadErrs {
			log.Warn("skipping user dictionary", "path", le.Path, "err", le.Err)
		}
		sources = append(sources, user...)
	}

	start := time.Now()
	dict := dictionary.Load(sources...)
	log.Debug("dictionary loaded",
		"words", dict.Len(),
		"skipped", dict.Skipped(),
		"sources", len(sources),
		"took", time.Since(start))

	opts := suggest.EngineOptions{
		MaxDistance: cfg.Server.MaxDistance,
		Adaptive:    cfg.Server.AdaptiveDistance,
	}
	if cfg.Cache.Enabled {
		opts.CacheCost = int64(cfg.Cache.MaxCost)
	}
	return suggest.NewEngine(dict, opts)
}

// userDictPath is where added words go, or "" without a dictionary directory.
func userDictPath() string {
	if app.configDir == "" && app.cfg.Dict.UserDir == "" {
		return ""
	}
	return app.cfg.UserDictPath(app.configDir)
}
