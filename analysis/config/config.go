// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxSummaryDepth is the default bound on the recursive summary
	// computation of callees. -1 means the depth limit is ignored.
	DefaultMaxSummaryDepth = 100

	// DefaultMaxSolverPasses is the default bound on full worklist passes per
	// routine before the solver gives up. The fixpoint is reached long before
	// this on well-formed input; the bound is a safety net.
	DefaultMaxSolverPasses = 100
)

// Config holds the options of the escape analysis.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// Private fields are not populated from a yaml file, but computed after initialization.
type Config struct {
	// LogLevel controls the verbosity of the analysis (see LogLevel constants).
	LogLevel int `yaml:"log-level"`

	// MaxSummaryDepth bounds the recursive computation of callee summaries.
	// When the bound is hit, the call degrades to the conservative fallback.
	MaxSummaryDepth int `yaml:"max-summary-depth"`

	// MaxSolverPasses bounds the worklist iterations of the per-routine solver.
	MaxSolverPasses int `yaml:"max-solver-passes"`

	// RoutineFilter restricts which routines the whole-program driver
	// analyzes. Empty matches everything.
	RoutineFilter string `yaml:"routine-filter"`

	// ReportRecursiveCycles enables reporting of elementary cycles in the
	// call graph before the bottom-up analysis.
	ReportRecursiveCycles bool `yaml:"report-recursive-cycles"`

	sourceFile         string
	routineFilterRegex *regexp.Regexp
}

// NewDefault returns a config with default parameters.
func NewDefault() *Config {
	return &Config{
		LogLevel:        int(InfoLevel),
		MaxSummaryDepth: DefaultMaxSummaryDepth,
		MaxSolverPasses: DefaultMaxSolverPasses,
	}
}

// Load reads a config from the yaml file at filename.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", filename, err)
	}
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", filename, err)
	}
	cfg.sourceFile = filename
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the option values and compiles the routine filter.
func (c *Config) Validate() error {
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level %d is out of range [%d,%d]", c.LogLevel, ErrLevel, TraceLevel)
	}
	if c.MaxSolverPasses <= 0 {
		return fmt.Errorf("max-solver-passes must be positive, got %d", c.MaxSolverPasses)
	}
	if c.RoutineFilter != "" {
		r, err := regexp.Compile(c.RoutineFilter)
		if err != nil {
			return fmt.Errorf("routine-filter %q does not compile: %w", c.RoutineFilter, err)
		}
		c.routineFilterRegex = r
	}
	return nil
}

// SourceFile returns the file this config was loaded from, if any.
func (c *Config) SourceFile() string {
	return c.sourceFile
}

// MatchRoutineFilter returns true when the routine name matches the filter.
// An empty filter matches every routine.
func (c *Config) MatchRoutineFilter(name string) bool {
	if c.routineFilterRegex == nil {
		return true
	}
	return c.routineFilterRegex.MatchString(name)
}

// Verbose returns true when the log level includes debug output.
func (c *Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
