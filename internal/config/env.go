// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The go-stock-keeper Authors

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment. The mapping is driven by
// the `env` and `envPrefix` struct tags declared on [StructuredConfig] and
// the types nested in it; a missing required variable or an unconvertible
// value surfaces as a wrapped error.
func parseEnv(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}
