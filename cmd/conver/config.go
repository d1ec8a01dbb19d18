// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/conver/internal/convert"
	"github.com/pdiddy/conver/internal/history"
	"github.com/pdiddy/conver/internal/logging"
	"github.com/pdiddy/conver/internal/render"
	"github.com/pdiddy/conver/pkg/types"
)

// loadConfig resolves flags, environment and config file into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	format, err := types.ParseFormat(string(cfg.Format))
	if err != nil {
		return cfg, convert.Usagef("format: %v", err)
	}
	cfg.Format = format

	report, err := render.ParseFormat(string(cfg.Report))
	if err != nil {
		return cfg, convert.Usagef("%v", err)
	}
	cfg.Report = report

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, convert.Usagef("%v", err)
	}
	if cfg.Timeout < 0 {
		return cfg, convert.Usagef("timeout must not be negative")
	}
	return cfg, nil
}

// app holds what every command needs once configuration is resolved.
type app struct {
	cfg    types.Config
	log    *zap.Logger
	render *render.Renderer
	store  *history.Store
}

// newApp loads configuration and builds the logger and renderer. The
// history store is opened when openHistory is set.
func newApp(cmd *cobra.Command, openHistory bool) (*app, error) {
	var notFound viper.ConfigFileNotFoundError
	if configErr != nil && !errors.As(configErr, &notFound) {
		return nil, fmt.Errorf("reading config file: %w", configErr)
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if used := viper.ConfigFileUsed(); used != "" && configErr == nil {
		log.Debug("using config file", zap.String("path", used))
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		render: render.New(cfg.Report, cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}

	if openHistory {
		if a.store, err = openStore(cfg.History); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func openStore(cfg types.HistoryConfig) (*history.Store, error) {
	path := cfg.Path
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(os.ExpandEnv(path))
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing history", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
