// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/cookbook/pkg/config"
	"github.com/NVIDIA/cookbook/pkg/defaults"
)

// Config holds server configuration.
type Config struct {
	// Server identity
	Name    string
	Version string

	// Handlers maps ServeMux patterns such as "GET /v1/recipes/{name}" to
	// handlers. Each is wrapped with the API middleware chain.
	Handlers map[string]http.HandlerFunc

	Address string
	Port    int

	// Rate limiting
	RateLimit      rate.Limit
	RateLimitBurst int

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// envConfig lists the settings read from the environment.
type envConfig struct {
	Address         string        `env:"COOKBOOK_ADDRESS"`
	Port            int           `env:"COOKBOOK_PORT"`
	RateLimit       float64       `env:"COOKBOOK_RATE_LIMIT"`
	RateLimitBurst  int           `env:"COOKBOOK_RATE_LIMIT_BURST"`
	ReadTimeout     time.Duration `env:"COOKBOOK_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"COOKBOOK_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"COOKBOOK_SHUTDOWN_TIMEOUT"`
}

// NewConfig returns defaults overridden by COOKBOOK_* environment variables.
func NewConfig() *Config {
	return parseConfig()
}

func defaultConfig() *Config {
	return &Config{
		Name:              "server",
		Version:           "undefined",
		Port:              8080,
		RateLimit:         100,
		RateLimitBurst:    200,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}
}

// parseConfig applies the environment on top of defaults. A malformed or
// out-of-range setting is logged and the defaults are kept.
func parseConfig() *Config {
	cfg := defaultConfig()

	ec := envConfig{
		Address:         cfg.Address,
		Port:            cfg.Port,
		RateLimit:       float64(cfg.RateLimit),
		RateLimitBurst:  cfg.RateLimitBurst,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	if err := config.ParseEnv(&ec); err != nil {
		slog.Warn("ignoring server environment", "error", err)
		return cfg
	}
	if err := ec.validate(); err != nil {
		slog.Warn("ignoring server environment", "error", err)
		return cfg
	}

	cfg.Address = ec.Address
	cfg.Port = ec.Port
	cfg.RateLimit = rate.Limit(ec.RateLimit)
	cfg.RateLimitBurst = ec.RateLimitBurst
	cfg.ReadTimeout = ec.ReadTimeout
	cfg.WriteTimeout = ec.WriteTimeout
	cfg.ShutdownTimeout = ec.ShutdownTimeout
	return cfg
}

func (ec envConfig) validate() error {
	switch {
	case ec.Port <= 0 || ec.Port > 65535:
		return fmt.Errorf("port %d out of range", ec.Port)
	case ec.RateLimit <= 0:
		return fmt.Errorf("rate limit must be positive, got %v", ec.RateLimit)
	case ec.RateLimitBurst <= 0:
		return fmt.Errorf("rate limit burst must be positive, got %d", ec.RateLimitBurst)
	case ec.ReadTimeout <= 0 || ec.WriteTimeout <= 0 || ec.ShutdownTimeout <= 0:
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
