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

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/report"
	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	s := NewServer(opts...)
	t.Cleanup(func() { require.NoError(t, s.Stop()) })

	return s
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func waitForStatus(t *testing.T, s *Server, scanID, want string) statusResponse {
	t.Helper()

	last := statusResponse{}
	require.Eventually(t, func() bool {
		rec := doRequest(t, s, http.MethodGet, "/api/scan/status/"+scanID, nil)
		if rec.Code != http.StatusOK {
			return false
		}

		decodeJSON(t, rec, &last)
		return last.Status == want
	}, 2*time.Second, 10*time.Millisecond)

	return last
}

func TestInitiateScanRunsToCompletion(t *testing.T) {
	s := newTestServer(t, WithScanFunc(func(path string, progress func(done, total int)) ([]detector.Finding, error) {
		progress(1, 1)
		return []detector.Finding{{File: filepath.Join(path, "a.py"), Category: detector.CategorySecret}}, nil
	}))

	root := t.TempDir()
	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": root})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "initiated", resp.Status)
	assert.Contains(t, resp.Message, root)
	require.NotEmpty(t, resp.ScanID)
	_, err := uuid.Parse(resp.ScanID)
	require.NoError(t, err)

	status := waitForStatus(t, s, resp.ScanID, StatusCompleted)
	assert.Equal(t, "Scan completed successfully", status.Progress)
	assert.Empty(t, status.Error)
}

func TestInitiateScanInvalidLocation(t *testing.T) {
	s := newTestServer(t)

	for _, location := range []string{"", "   ", "relative/path", "f.txt"} {
		t.Run("location "+location, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": location})
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := scanResponse{}
			decodeJSON(t, rec, &resp)
			assert.Equal(t, "invalid_location", resp.Status)
			assert.Equal(t, "Invalid scan location. Please provide a valid local path or repository URL.", resp.Message)
		})
	}

	rec := doRequest(t, s, http.MethodPost, "/api/scan", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiateScanMissingPathFailsAsync(t *testing.T) {
	s := newTestServer(t, WithScanFunc(func(string, func(done, total int)) ([]detector.Finding, error) {
		return nil, nil
	}))

	// Windows drive locations are recognized as local paths but cannot
	// resolve here, so the scan fails after initiation.
	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": "C:/repo"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)

	status := waitForStatus(t, s, resp.ScanID, StatusFailed)
	assert.Equal(t, "Path does not exist: C:/repo", status.Error)
}

func TestInitiateScanRepositoryURLFailsAsync(t *testing.T) {
	called := atomic.Bool{}
	s := newTestServer(t, WithScanFunc(func(string, func(done, total int)) ([]detector.Finding, error) {
		called.Store(true)
		return nil, nil
	}))

	for _, location := range []string{
		"https://github.com/acme/app.git",
		"http://github.com/acme/app.git",
		"git@github.com:acme/app.git",
		"ssh://git@github.com/acme/app.git",
	} {
		t.Run(location, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": location})
			require.Equal(t, http.StatusAccepted, rec.Code)

			resp := scanResponse{}
			decodeJSON(t, rec, &resp)

			status := waitForStatus(t, s, resp.ScanID, StatusFailed)
			assert.Equal(t, "Repository scanning is not implemented yet. Please use a local path.", status.Error)
		})
	}

	assert.False(t, called.Load())
}

func TestScanProgressVisibleWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	s := newTestServer(t, WithScanFunc(func(path string, progress func(done, total int)) ([]detector.Finding, error) {
		progress(3, 9)
		close(started)
		<-release
		return nil, nil
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": t.TempDir()})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("scan function never started")
	}

	statusRec := doRequest(t, s, http.MethodGet, "/api/scan/status/"+resp.ScanID, nil)
	require.Equal(t, http.StatusOK, statusRec.Code)

	status := statusResponse{}
	decodeJSON(t, statusRec, &status)
	assert.Equal(t, StatusRunning, status.Status)
	assert.Equal(t, "Scanning files... (3/9)", status.Progress)

	close(release)
	waitForStatus(t, s, resp.ScanID, StatusCompleted)
}

func TestScanFailureReported(t *testing.T) {
	s := newTestServer(t, WithScanFunc(func(string, func(done, total int)) ([]detector.Finding, error) {
		return nil, errors.New("disk exploded")
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": t.TempDir()})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)

	status := waitForStatus(t, s, resp.ScanID, StatusFailed)
	assert.Equal(t, "Scan failed: disk exploded", status.Error)
	assert.Empty(t, status.Progress)
}

func TestScanStatusNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/scan/status/no-such-scan", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	status := statusResponse{}
	decodeJSON(t, rec, &status)
	assert.Equal(t, "not_found", status.Status)
	assert.Equal(t, "Scan ID not found", status.Error)
}

func TestCancelScan(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/scan/cancel", map[string]string{"scan_id": "abc"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "cancelled", body["status"])
	assert.Contains(t, body["message"], "not interrupted")

	rec = doRequest(t, s, http.MethodPost, "/api/scan/cancel", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsReportScanActivity(t *testing.T) {
	s := newTestServer(t, WithScanFunc(func(string, func(done, total int)) ([]detector.Finding, error) {
		return []detector.Finding{
			{File: "a.py", Category: detector.CategorySecret},
			{File: "b.py", Category: detector.CategoryLibrary},
		}, nil
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": t.TempDir()})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)
	waitForStatus(t, s, resp.ScanID, StatusCompleted)

	metricsRec := doRequest(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metricsRec.Code)

	body := metricsRec.Body.String()
	assert.Contains(t, body, "crypscan_scans_started_total 1")
	assert.Contains(t, body, `crypscan_scans_completed_total{status="completed"} 1`)
	assert.Contains(t, body, `crypscan_findings_total{category="secret"} 1`)
	assert.Contains(t, body, `crypscan_findings_total{category="library"} 1`)
}

func TestHomeDirectoryExpansion(t *testing.T) {
	paths := make(chan string, 1)
	s := newTestServer(t, WithScanFunc(func(path string, _ func(done, total int)) ([]detector.Finding, error) {
		paths <- path
		return nil, nil
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": "~/"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	home, err := homedir.Dir()
	require.NoError(t, err)

	select {
	case got := <-paths:
		assert.Equal(t, home, got)
	case <-time.After(2 * time.Second):
		t.Fatal("scan function never started")
	}
}

func TestDefaultScanWritesFindingsFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "data", "findings.json")
	s := newTestServer(t, WithOutput(output))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("import hashlib\n"), 0o644))

	rec := doRequest(t, s, http.MethodPost, "/api/scan", map[string]string{"location": root})
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := scanResponse{}
	decodeJSON(t, rec, &resp)
	waitForStatus(t, s, resp.ScanID, StatusCompleted)

	findings, err := report.ReadFindings(output)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "hashlib", findings[0].Keyword)
	assert.Equal(t, detector.CategoryLibrary, findings[0].Category)
}

func TestLocationRecognition(t *testing.T) {
	for _, tt := range []struct {
		location string
		local    bool
		repo     bool
	}{
		{"/srv/app", true, false},
		{"./app", true, false},
		{"../app", true, false},
		{"~/app", true, false},
		{"C:/app", true, false},
		{"https://github.com/a/b", false, true},
		{"git@github.com:a/b.git", false, true},
		{"ssh://host/repo", false, true},
		{"app", false, false},
		{"", false, false},
	} {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.local, isLocalPath(tt.location))
			assert.Equal(t, tt.repo, isRepositoryURL(tt.location))
			assert.Equal(t, tt.local || tt.repo, validLocation(tt.location))
		})
	}
}
