// Copyright 2025 The Link2Trust Contributors
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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Link2Trust/crypscan"
	"github.com/Link2Trust/crypscan/report"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func TestRunScanWritesFindingsReport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.py": "import hashlib\n",
	})
	out := filepath.Join(t.TempDir(), "out", "findings.json")

	code := run([]string{"-path", root, "-output", out})
	require.Equal(t, 0, code)

	findings, err := report.ReadFindings(out)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "hashlib", findings[0].Keyword)
	assert.Equal(t, "Python", findings[0].Language)
}

func TestRunScanMissingRootFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "findings.json")

	code := run([]string{"-path", filepath.Join(t.TempDir(), "nope"), "-output", out})
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, out)
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-no-such-flag"}},
		{"bad placeholder mode", []string{"-placeholder-mode", "fuzzy"}},
		{"bad cbom format", []string{"-cbom-format", "yaml"}},
		{"negative max file size", []string{"-max-file-size-mb", "-1"}},
		{"negative workers", []string{"-workers", "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 2, run(tt.args))
		})
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 0, run([]string{"-h"}))
}

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, ".", opts.path)
	assert.Equal(t, "web/data/findings.json", opts.output)
	assert.Equal(t, "web/data/cbom.json", opts.cbomOutput)
	assert.Equal(t, "json", opts.cbomFormat)
	assert.Equal(t, "prefix", opts.placeholderMode)
	assert.Equal(t, ":8080", opts.addr)
	assert.Equal(t, 10, opts.maxFileSizeMB)
	assert.Equal(t, 0, opts.workers)
	assert.False(t, opts.mimeFilter)
	assert.False(t, opts.skipSecrets)
	assert.False(t, opts.serve)
}

func TestParseArgsConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "crypscan.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"path: /repo\nworkers: 7\nmime-filter: true\nplaceholder-mode: contains\n",
	), 0o644))

	opts, err := parseArgs([]string{"-config", cfg, "-workers", "3"})
	require.NoError(t, err)

	assert.Equal(t, "/repo", opts.path)
	assert.True(t, opts.mimeFilter)
	assert.Equal(t, "contains", opts.placeholderMode)
	// Command line flags win over the config file.
	assert.Equal(t, 3, opts.workers)
}

func TestParseArgsConfigFileErrors(t *testing.T) {
	_, err := parseArgs([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.ErrorContains(t, err, "error reading config file")

	cfg := filepath.Join(t.TempDir(), "crypscan.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workers: lots\n"), 0o644))

	_, err = parseArgs([]string{"-config", cfg})
	require.ErrorContains(t, err, "invalid config value for workers")
}

func TestParseArgsEnvironment(t *testing.T) {
	t.Setenv("CRYPSCAN_SKIP_SECRETS", "true")
	t.Setenv("CRYPSCAN_MAX_FILE_SIZE_MB", "25")

	opts, err := parseArgs(nil)
	require.NoError(t, err)
	assert.True(t, opts.skipSecrets)
	assert.Equal(t, 25, opts.maxFileSizeMB)

	// Command line flags win over the environment.
	opts, err = parseArgs([]string{"-max-file-size-mb", "5"})
	require.NoError(t, err)
	assert.Equal(t, 5, opts.maxFileSizeMB)
}

func TestRunScanWithCBOMAndSARIF(t *testing.T) {
	root := writeTree(t, map[string]string{
		"crypto/tls.rs":    "use openssl::ssl::SslContext;\n",
		"certs/server.pem": "-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----\n",
	})
	dir := t.TempDir()
	out := filepath.Join(dir, "findings.json")
	cbomOut := filepath.Join(dir, "cbom.json")
	sarifOut := filepath.Join(dir, "scan.sarif")

	code := run([]string{
		"-path", root,
		"-output", out,
		"-cbom",
		"-cbom-output", cbomOut,
		"-cbom-format", "cyclonedx-json",
		"-app-name", "billing-api",
		"-sarif", sarifOut,
	})
	require.Equal(t, 0, code)

	cbomData, err := os.ReadFile(cbomOut)
	require.NoError(t, err)
	assert.Contains(t, string(cbomData), `"bomFormat": "CycloneDX"`)
	assert.Contains(t, string(cbomData), "billing-api")
	assert.Contains(t, string(cbomData), "openssl")
	assert.Contains(t, string(cbomData), "server.pem")

	sarifData, err := os.ReadFile(sarifOut)
	require.NoError(t, err)
	assert.Contains(t, string(sarifData), `"2.1.0"`)
	assert.Contains(t, string(sarifData), "crypscan")
}

func TestWriteCBOMRequiresFindingsReport(t *testing.T) {
	opts := &options{
		output:     filepath.Join(t.TempDir(), "missing.json"),
		cbomOutput: filepath.Join(t.TempDir(), "cbom.json"),
		cbomFormat: "json",
	}

	err := writeCBOM(opts, &crypscan.Result{})
	require.ErrorIs(t, err, report.ErrNoReport)
	assert.NoFileExists(t, opts.cbomOutput)
}
