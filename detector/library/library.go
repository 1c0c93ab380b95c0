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

// Package library detects usage of cryptographic libraries in source code by
// matching import, require, and include statements against a fixed keyword
// table, and by reading dependency manifests.
package library

import (
	"fmt"
	"strings"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/registry"
)

const (
	Name = "library"

	defaultScanManifests = true
)

var _ detector.Detector = &Detector{}

func init() {
	detector.RegisterDetector(Name, func() detector.Detector { return New() },
		registry.BoolConfigOption(
			"scan-manifests",
			"Parse dependency manifests such as go.mod for crypto libraries",
			defaultScanManifests,
			func(d detector.Detector, scanManifests bool) (detector.Detector, error) {
				libraryDetector, ok := d.(*Detector)
				if !ok {
					return d, fmt.Errorf("unexpected detector type: %T is not a library detector", d)
				}

				WithManifestScan(scanManifests)(libraryDetector)
				return libraryDetector, nil
			},
		),
	)
}

type Option func(*Detector)

// WithManifestScan toggles parsing of dependency manifests.
func WithManifestScan(scanManifests bool) Option {
	return func(d *Detector) {
		d.scanManifests = scanManifests
	}
}

// Detector finds cryptographic library usage in code files and manifests.
type Detector struct {
	scanManifests bool
}

func New(opts ...Option) *Detector {
	d := &Detector{
		scanManifests: defaultScanManifests,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Detector) Name() string {
	return Name
}

func (d *Detector) Category() detector.Category {
	return detector.CategoryLibrary
}

func (d *Detector) Applies(c classify.Result) bool {
	return c.Code || (d.scanManifests && c.Manifest)
}

func (d *Detector) Detect(t *detector.Target) ([]detector.Finding, error) {
	if t.Class.Manifest {
		return d.detectManifest(t)
	}

	return d.detectCode(t)
}

// detectCode matches every line of a source file against the keyword table.
// Block comment continuation lines are skipped; everything else, including
// line comments, is scanned so commented-out crypto usage still surfaces.
func (d *Detector) detectCode(t *detector.Target) ([]detector.Finding, error) {
	lines, err := t.Lines()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.Path, err)
	}

	findings := []detector.Finding{}
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "*") {
			continue
		}

		matched := make([]pattern, 0, 2)
		for _, p := range patterns {
			if p.re.MatchString(line) {
				matched = append(matched, p)
			}
		}

		for _, p := range shadowShorterKeywords(matched) {
			findings = append(findings, detector.Finding{
				File:        t.Path,
				LineNumber:  i + 1,
				LineContent: line,
				MatchType:   p.matchType,
				Keyword:     p.label,
				Context:     p.matchType,
				Version:     p.version,
				Language:    p.language,
				Source:      p.matchType,
				Category:    detector.CategoryLibrary,
			})
		}
	}

	return findings, nil
}

// shadowShorterKeywords drops a matched entry when a longer matched entry on
// the same line contains its keyword. A `use openssl::ssl::SslContext` line
// reports openssl once instead of openssl plus a spurious ssl.
func shadowShorterKeywords(matched []pattern) []pattern {
	if len(matched) < 2 {
		return matched
	}

	kept := make([]pattern, 0, len(matched))
	for i, p := range matched {
		shadowed := false
		for j, q := range matched {
			if i != j && len(q.keyword) > len(p.keyword) && strings.Contains(q.keyword, p.keyword) {
				shadowed = true
				break
			}
		}

		if !shadowed {
			kept = append(kept, p)
		}
	}

	return kept
}
