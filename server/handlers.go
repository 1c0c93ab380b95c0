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
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Link2Trust/crypscan/log"
	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
)

type scanRequest struct {
	Location  string `json:"location"`
	Timestamp string `json:"timestamp,omitempty"`
}

type scanResponse struct {
	ScanID  string `json:"scan_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Progress string `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
}

type cancelRequest struct {
	ScanID string `json:"scan_id"`
}

// handleInitiate validates the requested location, mints a scan id, and
// kicks off the scan on a background goroutine. The response returns
// immediately; clients poll the status endpoint for the outcome.
func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := scanRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, scanResponse{
			Status:  "invalid_location",
			Message: "Invalid scan request body.",
		})
		return
	}

	location := strings.TrimSpace(req.Location)
	if !validLocation(location) {
		writeJSON(w, http.StatusBadRequest, scanResponse{
			Status:  "invalid_location",
			Message: "Invalid scan location. Please provide a valid local path or repository URL.",
		})
		return
	}

	scanID := uuid.New().String()
	s.tracker.start(scanID)
	s.metrics.scanStarted()
	log.Infof("(server) scan %v requested for %v", scanID, location)

	go s.executeScan(scanID, location)

	writeJSON(w, http.StatusAccepted, scanResponse{
		ScanID:  scanID,
		Status:  "initiated",
		Message: fmt.Sprintf("Scan initiated for location: %s", location),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scanID := strings.TrimPrefix(r.URL.Path, "/api/scan/status/")
	if scanID == "" || strings.Contains(scanID, "/") {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "not_found", Error: "Scan ID not found"})
		return
	}

	state, ok := s.tracker.get(scanID)
	if !ok {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "not_found", Error: "Scan ID not found"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:   state.Status,
		Progress: state.Progress,
		Error:    state.Error,
	})
}

// handleCancel acknowledges a cancellation request. Running scans are never
// interrupted; the record keeps updating until the scan finishes on its own.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := cancelRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScanID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "invalid_request",
			"error":  "A scan_id is required",
		})
		return
	}

	log.Infof("(server) cancellation requested for scan %v", req.ScanID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "cancelled",
		"message": "Scan cancellation acknowledged; running scans are not interrupted",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// executeScan drives one background scan and keeps the tracker current.
// Repository URLs are recognized by the location validator but fail here:
// cloning is not wired up.
func (s *Server) executeScan(scanID, location string) {
	s.tracker.progress(scanID, "Processing scan location...")

	if isRepositoryURL(location) {
		s.metrics.scanFinished(StatusFailed)
		s.tracker.fail(scanID, "Repository scanning is not implemented yet. Please use a local path.")
		return
	}

	path, err := homedir.Expand(location)
	if err != nil {
		s.metrics.scanFinished(StatusFailed)
		s.tracker.fail(scanID, fmt.Sprintf("Cannot resolve path: %v", err))
		return
	}

	if _, err := os.Stat(path); err != nil {
		s.metrics.scanFinished(StatusFailed)
		s.tracker.fail(scanID, fmt.Sprintf("Path does not exist: %s", location))
		return
	}

	s.tracker.progress(scanID, "Scanning files...")

	findings, err := s.scanFn(path, func(done, total int) {
		s.tracker.progress(scanID, fmt.Sprintf("Scanning files... (%d/%d)", done, total))
	})
	if err != nil {
		log.Errorf("(server) scan %v failed: %v", scanID, err)
		s.metrics.scanFinished(StatusFailed)
		s.tracker.fail(scanID, fmt.Sprintf("Scan failed: %v", err))
		return
	}

	log.Infof("(server) scan %v completed with %v findings", scanID, len(findings))

	// Counters update before the status flips to a terminal state.
	s.metrics.recordFindings(findings)
	s.metrics.scanFinished(StatusCompleted)
	s.tracker.complete(scanID, "Scan completed successfully")
}

func validLocation(location string) bool {
	return isLocalPath(location) || isRepositoryURL(location)
}

// isLocalPath recognizes absolute, relative, home-anchored, and windows
// drive paths.
func isLocalPath(location string) bool {
	if strings.HasPrefix(location, "/") || strings.HasPrefix(location, "./") ||
		strings.HasPrefix(location, "../") || strings.HasPrefix(location, "~/") {
		return true
	}

	return len(location) > 2 && location[1] == ':'
}

func isRepositoryURL(location string) bool {
	return strings.HasPrefix(location, "https://") || strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "git@") || strings.HasPrefix(location, "ssh://")
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("(server) error writing response: %v", err)
	}
}
