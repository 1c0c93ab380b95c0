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

// Package server exposes the scanner over HTTP: scan initiation against
// local paths, status polling, cancellation acknowledgment, Prometheus
// metrics, and a liveness probe. Scans run on background goroutines and
// report through a TTL-bounded status tracker.
package server

import (
	"context"
	"net/http"
	"time"

	crypscan "github.com/Link2Trust/crypscan"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/log"
	"github.com/Link2Trust/crypscan/report"
)

const (
	defaultRetention = time.Hour
	defaultOutput    = "web/data/findings.json"

	shutdownTimeout = 5 * time.Second
)

// ScanFunc executes one scan against a resolved local path and reports
// per-file progress through the callback. The default implementation runs
// the scanner and persists the findings file; tests inject their own.
type ScanFunc func(path string, progress func(done, total int)) ([]detector.Finding, error)

// Server is the HTTP control plane around the scanner.
type Server struct {
	scanFn    ScanFunc
	tracker   *tracker
	metrics   *metrics
	retention time.Duration
	output    string

	httpServer *http.Server
}

type Option func(*Server)

// WithScanFunc replaces the scan execution function.
func WithScanFunc(fn ScanFunc) Option {
	return func(s *Server) {
		s.scanFn = fn
	}
}

// WithRetention sets how long finished scan records stay queryable.
func WithRetention(d time.Duration) Option {
	return func(s *Server) {
		s.retention = d
	}
}

// WithOutput sets the findings file written after each scan.
func WithOutput(path string) Option {
	return func(s *Server) {
		s.output = path
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		retention: defaultRetention,
		output:    defaultOutput,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.scanFn == nil {
		s.scanFn = defaultScanFunc(s.output)
	}

	s.tracker = newTracker(s.retention)
	s.metrics = newMetrics()

	return s
}

// defaultScanFunc runs a full scan and persists the findings file the
// dashboard reads.
func defaultScanFunc(output string) ScanFunc {
	return func(path string, progress func(done, total int)) ([]detector.Finding, error) {
		result, err := crypscan.Scan(path, crypscan.WithProgress(progress))
		if err != nil {
			return nil, err
		}

		if err := report.WriteFindings(output, result.Findings); err != nil {
			return nil, err
		}

		return result.Findings, nil
	}
}

// Handler returns the full API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan", s.handleInitiate)
	mux.HandleFunc("/api/scan/status/", s.handleStatus)
	mux.HandleFunc("/api/scan/cancel", s.handleCancel)
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/healthz", s.handleHealth)

	return allowAnyOrigin(mux)
}

// Start serves the API on addr and blocks until the listener fails or Stop
// is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("(server) listening on %v", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the listener and the status tracker. Background
// scans already in flight keep running to completion.
func (s *Server) Stop() error {
	s.tracker.stop()
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// allowAnyOrigin opens the API to browser dashboards on any origin.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
