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

package wombat

import (
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/timelock"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry  prometheus.Registerer
	logger        *slog.Logger
	accountLedger ledger.AccountLedger
	nftOracle     ledger.NFTOracle
	invoker       timelock.CallInvoker
	now           func() time.Time
	dataDir       string
	network       string
	owner         principal.Address
	treasury      principal.Address
	tracing       bool
	tracingStdout bool
}

type ConfigOptionFunc func(*Config)

func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		network: "testnet",
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

func WithNetwork(network string) ConfigOptionFunc {
	return func(c *Config) {
		c.network = network
	}
}

func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

func WithOwner(owner principal.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

func WithTreasury(treasury principal.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.treasury = treasury
	}
}

func WithAccountLedger(accountLedger ledger.AccountLedger) ConfigOptionFunc {
	return func(c *Config) {
		c.accountLedger = accountLedger
	}
}

func WithNFTOracle(oracle ledger.NFTOracle) ConfigOptionFunc {
	return func(c *Config) {
		c.nftOracle = oracle
	}
}

// WithCallInvoker overrides how passed proposal actions are carried out.
// The default invoker transfers the action's value from the treasury to
// the target account.
func WithCallInvoker(invoker timelock.CallInvoker) ConfigOptionFunc {
	return func(c *Config) {
		c.invoker = invoker
	}
}

// WithClock overrides the time source, mostly useful in tests
func WithClock(now func() time.Time) ConfigOptionFunc {
	return func(c *Config) {
		c.now = now
	}
}

func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout instead of OTLP-HTTP
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
