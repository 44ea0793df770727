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
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(name, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return name
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Errorf("default log level is %d, want %d", cfg.LogLevel, InfoLevel)
	}
	if cfg.MaxSummaryDepth != DefaultMaxSummaryDepth {
		t.Errorf("default summary depth is %d, want %d", cfg.MaxSummaryDepth, DefaultMaxSummaryDepth)
	}
	if cfg.MaxSolverPasses != DefaultMaxSolverPasses {
		t.Errorf("default solver passes is %d, want %d", cfg.MaxSolverPasses, DefaultMaxSolverPasses)
	}
	if !cfg.MatchRoutineFilter("anything") {
		t.Errorf("empty filter should match every routine")
	}
}

func TestLoad(t *testing.T) {
	name := writeConfig(t, `
log-level: 4
max-summary-depth: 7
routine-filter: "^pkg\\."
report-recursive-cycles: true
`)
	cfg, err := Load(name)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.LogLevel != int(DebugLevel) || !cfg.Verbose() {
		t.Errorf("log level not applied: %d", cfg.LogLevel)
	}
	if cfg.MaxSummaryDepth != 7 {
		t.Errorf("max-summary-depth not applied: %d", cfg.MaxSummaryDepth)
	}
	// Unset options keep their defaults.
	if cfg.MaxSolverPasses != DefaultMaxSolverPasses {
		t.Errorf("max-solver-passes should default: %d", cfg.MaxSolverPasses)
	}
	if !cfg.ReportRecursiveCycles {
		t.Errorf("report-recursive-cycles not applied")
	}
	if cfg.SourceFile() != name {
		t.Errorf("source file not recorded: %q", cfg.SourceFile())
	}
	if !cfg.MatchRoutineFilter("pkg.run") || cfg.MatchRoutineFilter("other.run") {
		t.Errorf("routine filter not applied")
	}
}

func TestLoadErrors(t *testing.T) {
	for _, test := range []struct {
		name     string
		contents string
	}{
		{"log level out of range", "log-level: 9"},
		{"bad filter regex", `routine-filter: "("`},
		{"non-positive solver bound", "max-solver-passes: 0"},
		{"not yaml", "log-level: [1, 2"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, test.contents)); err == nil {
				t.Errorf("expected an error for %q", test.contents)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
