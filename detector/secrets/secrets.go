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

// Package secrets detects hardcoded credentials in source and configuration
// files. It matches each line against a table of credential-shaped regular
// expressions, extracts the candidate secret value from the match, and runs
// heuristic false-positive suppression before reporting a finding. The
// builtin pattern table can be replaced with a gitleaks TOML ruleset.
package secrets

import (
	"fmt"
	"sync"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/log"
	"github.com/Link2Trust/crypscan/registry"
)

const (
	Name = "secret"

	defaultMaxFileSizeMB   = 10
	defaultMinSecretLength = 8

	// Lines longer than this are skipped to keep pathological inputs such
	// as minified bundles from stalling the regex engine.
	maxLineLength = 10_000
)

var _ detector.Detector = &Detector{}

func init() {
	detector.RegisterDetector(Name, func() detector.Detector { return New() },
		registry.IntConfigOption(
			"max-file-size-mb",
			"Maximum file size in megabytes to scan for secrets. 0 disables the limit",
			defaultMaxFileSizeMB,
			func(d detector.Detector, maxFileSizeMB int) (detector.Detector, error) {
				secretDetector, ok := d.(*Detector)
				if !ok {
					return d, fmt.Errorf("unexpected detector type: %T is not a secret detector", d)
				}

				WithMaxFileSize(maxFileSizeMB)(secretDetector)
				return secretDetector, nil
			},
		),
		registry.IntConfigOption(
			"min-secret-length",
			"Minimum length of an extracted candidate value before it is reported",
			defaultMinSecretLength,
			func(d detector.Detector, minSecretLength int) (detector.Detector, error) {
				secretDetector, ok := d.(*Detector)
				if !ok {
					return d, fmt.Errorf("unexpected detector type: %T is not a secret detector", d)
				}

				WithMinSecretLength(minSecretLength)(secretDetector)
				return secretDetector, nil
			},
		),
		registry.StringConfigOption(
			"placeholder-mode",
			"Placeholder matching mode for false-positive suppression, either prefix or contains",
			PlaceholderModePrefix,
			func(d detector.Detector, placeholderMode string) (detector.Detector, error) {
				secretDetector, ok := d.(*Detector)
				if !ok {
					return d, fmt.Errorf("unexpected detector type: %T is not a secret detector", d)
				}

				WithPlaceholderMode(placeholderMode)(secretDetector)
				return secretDetector, nil
			},
		),
		registry.StringConfigOption(
			"ruleset",
			"Path to a gitleaks TOML configuration whose rules replace the builtin pattern table",
			"",
			func(d detector.Detector, ruleset string) (detector.Detector, error) {
				secretDetector, ok := d.(*Detector)
				if !ok {
					return d, fmt.Errorf("unexpected detector type: %T is not a secret detector", d)
				}

				WithRuleset(ruleset)(secretDetector)
				return secretDetector, nil
			},
		),
	)
}

type Option func(*Detector)

// WithMaxFileSize caps the size of files scanned for secrets, in megabytes.
// Zero or negative disables the cap.
func WithMaxFileSize(megabytes int) Option {
	return func(d *Detector) {
		d.maxFileSizeMB = megabytes
	}
}

// WithMinSecretLength sets the length floor below which extracted candidate
// values are suppressed as false positives.
func WithMinSecretLength(length int) Option {
	return func(d *Detector) {
		d.minSecretLength = length
	}
}

// WithPlaceholderMode selects how placeholder tokens are matched against
// candidate values. Any value other than PlaceholderModeContains selects
// prefix matching.
func WithPlaceholderMode(mode string) Option {
	return func(d *Detector) {
		d.placeholderMode = mode
	}
}

// WithRuleset points the detector at a gitleaks TOML configuration file. The
// loaded rules replace the builtin pattern table.
func WithRuleset(path string) Option {
	return func(d *Detector) {
		d.rulesetPath = path
	}
}

// Detector scans file lines for hardcoded credentials. A Detector is safe for
// concurrent use across files once constructed.
type Detector struct {
	maxFileSizeMB   int
	minSecretLength int
	placeholderMode string
	rulesetPath     string

	rulesOnce sync.Once
	rules     []rule
	rulesErr  error
}

func New(opts ...Option) *Detector {
	d := &Detector{
		maxFileSizeMB:   defaultMaxFileSizeMB,
		minSecretLength: defaultMinSecretLength,
		placeholderMode: PlaceholderModePrefix,
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
	return detector.CategorySecret
}

// Applies reports whether the file is eligible for secret scanning. Secrets
// hide in source code and in configuration files alike.
func (d *Detector) Applies(c classify.Result) bool {
	return c.Code || c.Config
}

// ruleset resolves the active rule table, loading a configured gitleaks
// ruleset on first use. The result is cached for the lifetime of the
// detector so concurrent Detect calls share one table.
func (d *Detector) ruleset() ([]rule, error) {
	d.rulesOnce.Do(func() {
		if d.rulesetPath == "" {
			d.rules = builtinRules
			return
		}

		d.rules, d.rulesErr = loadRuleset(d.rulesetPath)
	})

	return d.rules, d.rulesErr
}

// Detect scans the target line by line against the active rule table.
// Comment lines and overlong lines are skipped before any pattern runs, and
// every match passes through false-positive suppression before it becomes a
// finding.
func (d *Detector) Detect(t *detector.Target) ([]detector.Finding, error) {
	rules, err := d.ruleset()
	if err != nil {
		return nil, err
	}

	if d.maxFileSizeMB > 0 {
		size, err := t.Size()
		if err != nil {
			return nil, fmt.Errorf("error sizing %s: %w", t.Path, err)
		}

		if size > int64(d.maxFileSizeMB)*1_000_000 {
			log.Debugf("(detector/secrets) skipping %s: %d bytes exceeds %dMB limit", t.Path, size, d.maxFileSizeMB)
			return nil, nil
		}
	}

	lines, err := t.Lines()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", t.Path, err)
	}

	var findings []detector.Finding
	for i, line := range lines {
		if isCommentLine(line) || len(line) > maxLineLength {
			continue
		}

		for _, r := range rules {
			for _, match := range r.re.FindAllStringSubmatch(line, -1) {
				value := r.extract(match)
				if isLikelyFalsePositive(line, value, d.placeholderMode, d.minSecretLength) {
					continue
				}

				findings = append(findings, detector.Finding{
					File:        t.Path,
					LineNumber:  i + 1,
					LineContent: line,
					MatchType:   detector.MatchTypeSecret,
					Keyword:     r.keyword,
					Context:     r.description,
					Language:    t.Language,
					Source:      detector.SourceHardcoded,
					Category:    detector.CategorySecret,
				})
			}
		}
	}

	return findings, nil
}
