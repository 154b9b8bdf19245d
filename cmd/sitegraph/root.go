// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agentberlin/sitegraph/internal/app"
	"github.com/agentberlin/sitegraph/internal/config"
	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	configFile string
	dbPath     string
	logLevel   string
	jsonLogs   bool
}

// env is the runtime shared by the subcommands. It is created lazily by
// commands that need the database.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	store   *store.Store
	app     *app.App
	server  *http.Server
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sitegraph",
		Short: "Site knowledge graph crawler",
		Long: `sitegraph crawls a website, extracts the organizations, services, products
and topics it describes into a knowledge graph, and generates questions that
can be answered strictly from the crawled content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Emit JSON log lines instead of console output")

	rootCmd.AddCommand(
		newCrawlCmd(opts),
		newGraphCmd(opts),
		newReportCmd(opts),
		newQuestionsCmd(opts),
		newSitesCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads configuration, opens the store and wires the app. The caller
// must call close.
func setup(ctx context.Context, opts *rootOptions, configure func(*config.Config)) (*env, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.jsonLogs {
		cfg.Log.Pretty = false
	}
	if configure != nil {
		configure(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	lc := logger.DefaultConfig()
	lc.Level = level
	lc.Pretty = cfg.Log.Pretty
	e := &env{cfg: cfg, log: logger.New(lc)}

	reg := prometheus.NewRegistry()
	e.metrics = metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		e.serveMetrics(cfg.Metrics.Addr)
	}

	e.store, err = store.NewStore(cfg.Database.Path)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	e.app, err = app.NewApp(ctx, app.Options{
		Config:  cfg,
		Store:   e.store,
		Emitter: &cliEmitter{log: e.log.WithComponent("cli")},
		Logger:  e.log,
		Metrics: e.metrics,
	})
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.WithError(err).Error("Metrics listener stopped")
		}
	}()
	e.log.Infof("Serving metrics on %s/metrics", addr)
}

// close releases the browser, the store and the metrics listener.
func (e *env) close() {
	if e.app != nil {
		if err := e.app.Close(); err != nil {
			e.log.WithError(err).Warn("Failed to close browser")
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.WithError(err).Warn("Failed to close database")
		}
	}
	if e.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.server.Shutdown(ctx)
	}
}

// resolveSite accepts a site id or a domain.
func (e *env) resolveSite(ref string) (*store.Site, error) {
	site, err := e.store.GetSite(ref)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return e.store.GetSiteByDomain(ref)
}
