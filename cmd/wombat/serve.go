// Copyright 2026 Blink Labs Software
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
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	wombat "github.com/blinklabs-io/wombat"
	"github.com/blinklabs-io/wombat/internal/config"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	owner, err := principal.AddressFromHex(cfg.Owner)
	if err != nil {
		slog.Error(fmt.Sprintf("invalid owner address: %s", err))
		os.Exit(1)
	}
	opts := []wombat.ConfigOptionFunc{
		wombat.WithLogger(logger),
		wombat.WithDataDir(cfg.DatabasePath),
		wombat.WithNetwork(cfg.Network),
		wombat.WithOwner(owner),
		wombat.WithTracing(cfg.Tracing),
		wombat.WithTracingStdout(cfg.TracingStdout),
	}
	promRegistry := prometheus.NewRegistry()
	opts = append(opts, wombat.WithPrometheusRegistry(promRegistry))
	if cfg.Treasury != "" {
		treasury, err := principal.AddressFromHex(cfg.Treasury)
		if err != nil {
			slog.Error(fmt.Sprintf("invalid treasury address: %s", err))
			os.Exit(1)
		}
		opts = append(opts, wombat.WithTreasury(treasury))
	}

	governor, err := wombat.New(wombat.NewConfig(opts...))
	if err != nil {
		slog.Error(fmt.Sprintf("failed to start governor: %s", err))
		os.Exit(1)
	}
	logger.Info(
		fmt.Sprintf(
			"governance started on %s, governor account %s",
			governor.Network().Name,
			governor.Address().String(),
		),
		"component", programName,
	)

	// Metrics listener
	metricsServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: promhttp.HandlerFor(
			promRegistry,
			promhttp.HandlerOpts{},
		),
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info(
			fmt.Sprintf("serving metrics on :%d", cfg.MetricsPort),
			"component", programName,
		)
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	logger.Info(
		fmt.Sprintf("received signal %v, shutting down", sig),
		"component", programName,
	)
	if err := metricsServer.Close(); err != nil {
		logger.Warn(err.Error())
	}
	if err := governor.Close(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the governance service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
}
