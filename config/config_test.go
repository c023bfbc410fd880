// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/config"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artigraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
parallelism: 4
backend:
  kind: inmem
storage:
  root: /data
path_tags:
  env: test
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	want := config.Config{
		LogLevel:    "debug",
		Parallelism: 4,
		Backend:     config.BackendConfig{Kind: "inmem"},
		Storage:     config.StorageConfig{Root: "/data"},
		PathTags:    map[string]string{"env": "test"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artigraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))
	t.Setenv("ARTIGRAPH_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, logging.Warn, cfg.Logger().GetLevel())
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artigraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errs.IsDefinition(err))
}
