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

// Package report persists scan findings. The serialized findings array is the
// contract between the scanner and every downstream consumer, including the
// CBOM synthesizer.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Link2Trust/crypscan/detector"
)

// ErrNoReport marks a findings report that does not exist yet. Callers use it
// to distinguish "run a scan first" from a corrupt or unreadable report.
var ErrNoReport = errors.New("no findings report found")

// WriteFindings writes the findings as a pretty-printed JSON array, creating
// parent directories as needed. A nil findings slice is written as an empty
// array so consumers always see a JSON list.
func WriteFindings(path string, findings []detector.Finding) error {
	if findings == nil {
		findings = []detector.Finding{}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating report directory for %s: %w", path, err)
		}
	}

	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling findings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing findings report: %w", err)
	}

	return nil
}

// ReadFindings reads a findings report back. A missing file is reported as
// ErrNoReport.
func ReadFindings(path string) ([]detector.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}

		return nil, fmt.Errorf("error reading findings report %s: %w", path, err)
	}

	var findings []detector.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("error parsing findings report %s: %w", path, err)
	}

	return findings, nil
}
