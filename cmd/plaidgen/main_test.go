package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libninjacom/plaidgen/internal/errs"
	"github.com/libninjacom/plaidgen/internal/target"
	"github.com/libninjacom/plaidgen/internal/testutil"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(envMap(env))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunWritesCorrectedSpec(t *testing.T) {
	src := testutil.WriteFile(t, "openapi.yml", testutil.PlaidSpec)
	root := t.TempDir()

	out, err := execute(t, map[string]string{
		"OPENAPI_PATH": src,
		"VERSION":      "1.0.0",
		"GENERATOR":    "rust",
	}, "--output-root", root, "--log-format", "json")
	require.NoError(t, err, out)

	assert.FileExists(t, filepath.Join(root, "plaid-rs", "openapi.yaml"))
	assert.FileExists(t, filepath.Join(root, "plaid-rs", "libninja.json"))
	assert.Contains(t, out, `"msg":"done"`)
	assert.Contains(t, out, `"fixes":5`)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	src := testutil.WriteFile(t, "openapi.yml", testutil.PlaidSpec)
	root := t.TempDir()

	out, err := execute(t, map[string]string{
		"OPENAPI_PATH": "/does/not/exist.yml",
		"VERSION":      "1.0.0",
		"GENERATOR":    "rust",
	}, src, "-g", "py", "-p", "2.0.0", "-o", root, "--format", "json")
	require.NoError(t, err, out)

	manifest, err := os.ReadFile(filepath.Join(root, "plaid-python", "libninja.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"packageVersion": "2.0.0"`)
	assert.Contains(t, string(manifest), `"packageName": "plaid2"`)
	assert.FileExists(t, filepath.Join(root, "plaid-python", "openapi.json"))
}

func TestConfigFile(t *testing.T) {
	src := testutil.WriteFile(t, "openapi.yml", testutil.PlaidSpec)
	root := t.TempDir()
	cfgFile := testutil.WriteFile(t, "plaidgen.json", `{
		"source": "`+src+`",
		"version": "0.1.0",
		"generator": "typescript",
		"outputRoot": "`+root+`",
		"org": "acme"
	}`)

	cmd := newRootCmd(envMap(map[string]string{"VERSION": "0.2.0"}))
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile}))
	f := &flags{cfgFile: cfgFile}
	cfg, err := loadConfig(cmd, nil, f, envMap(map[string]string{"VERSION": "0.2.0"}))
	require.NoError(t, err)

	assert.Equal(t, src, cfg.Source)
	assert.Equal(t, "0.2.0", cfg.Version, "environment wins over the config file")
	assert.Equal(t, target.TypeScript, cfg.Generator)
	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, "https://plaid.com/docs", cfg.DocsBaseURL, "defaults fill fields absent from the file")
}

func TestRunErrors(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		out, err := execute(t, map[string]string{"OPENAPI_PATH": "x.yml", "GENERATOR": "go"})
		assert.ErrorIs(t, err, errs.ErrConfig)
		assert.Contains(t, err.Error(), "VERSION")
		assert.Contains(t, out, "level=ERROR")
		assert.Contains(t, out, `msg="plaidgen failed"`)
		assert.NotContains(t, out, "Error:", "cobra does not print the error itself")
		var logged *loggedError
		assert.ErrorAs(t, err, &logged)
	})

	t.Run("unknown generator flag", func(t *testing.T) {
		_, err := execute(t, nil, "-g", "java")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rust, python, typescript, go")
	})

	t.Run("invalid log format", func(t *testing.T) {
		_, err := execute(t, nil, "--log-format", "xml")
		assert.EqualError(t, err, `unknown log format "xml" (expected text or json)`)
		var logged *loggedError
		assert.False(t, errors.As(err, &logged), "errors before the logger exists are printed by main")
	})

	t.Run("load failure", func(t *testing.T) {
		src := testutil.WriteFile(t, "openapi.yml", "openapi: [3.0.0\n")
		root := t.TempDir()
		out, err := execute(t, map[string]string{
			"OPENAPI_PATH": src, "VERSION": "1.0.0", "GENERATOR": "rust",
		}, "-o", root, "--log-format", "json")
		assert.Contains(t, out, `"level":"ERROR"`)
		assert.Contains(t, out, `"msg":"plaidgen failed"`)
		assert.ErrorIs(t, err, errs.ErrLoad)
		assert.NoDirExists(t, filepath.Join(root, "plaid-rs"))
	})
}
