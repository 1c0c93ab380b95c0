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

// Package crypscan walks a directory tree and runs crypto detectors against
// every eligible file, producing findings that downstream consumers turn into
// reports and CBOM documents.
package crypscan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/detector/artifact"
	"github.com/Link2Trust/crypscan/detector/library"
	"github.com/Link2Trust/crypscan/detector/secrets"
	"github.com/Link2Trust/crypscan/gitinfo"
	"github.com/Link2Trust/crypscan/log"
	"github.com/gobwas/glob"
)

const defaultIncludeGlob = "*"

type scanOptions struct {
	detectors   []detector.Detector
	secretScan  bool
	mimeFilter  bool
	workers     int
	progress    func(done, total int)
	includeGlob string
	excludeGlob string
	gitMetadata bool
}

// Option configures a Scan call.
type Option func(*scanOptions)

// WithDetectors replaces the default detector set. Detectors run against each
// file in the order given here.
func WithDetectors(detectors ...detector.Detector) Option {
	return func(so *scanOptions) {
		so.detectors = detectors
	}
}

// WithoutSecretScan drops secret detection from the scan. All other detector
// families still run.
func WithoutSecretScan() Option {
	return func(so *scanOptions) {
		so.secretScan = false
	}
}

// WithMIMEFilter toggles the content sniffing gate that skips prose-like
// files before any detector runs.
func WithMIMEFilter(enabled bool) Option {
	return func(so *scanOptions) {
		so.mimeFilter = enabled
	}
}

// WithWorkers sets the number of concurrent detector workers. Values below
// one fall back to the number of CPUs.
func WithWorkers(n int) Option {
	return func(so *scanOptions) {
		so.workers = n
	}
}

// WithProgress installs a callback invoked after each processed file with the
// number of files finished so far and the total queued. The callback runs on
// the collecting goroutine, so it must not block for long.
func WithProgress(fn func(done, total int)) Option {
	return func(so *scanOptions) {
		so.progress = fn
	}
}

// WithIncludeGlob restricts the scan to files whose root-relative slash path
// matches the pattern.
func WithIncludeGlob(pattern string) Option {
	return func(so *scanOptions) {
		so.includeGlob = pattern
	}
}

// WithExcludeGlob drops files whose root-relative slash path matches the
// pattern. Exclusion wins over inclusion.
func WithExcludeGlob(pattern string) Option {
	return func(so *scanOptions) {
		so.excludeGlob = pattern
	}
}

// WithGitMetadata toggles repository metadata collection for the scan root.
func WithGitMetadata(enabled bool) Option {
	return func(so *scanOptions) {
		so.gitMetadata = enabled
	}
}

// Result is the outcome of one scan.
type Result struct {
	// Findings holds every detector finding, batched per file in completion
	// order and line-ordered within each file.
	Findings []detector.Finding
	// FilesScanned counts files handed to the detector stage.
	FilesScanned int
	// FilesSkipped counts files dropped by globs, classification, or the
	// MIME gate.
	FilesSkipped int
	Duration     time.Duration
	// Git carries repository metadata for the scan root, nil when the root
	// is not inside a work tree or metadata collection is disabled.
	Git *gitinfo.Info
}

// defaultDetectors builds the full detector set in scan order.
func defaultDetectors() []detector.Detector {
	return []detector.Detector{
		library.New(),
		artifact.NewCommandDetector(),
		secrets.New(),
		artifact.NewKeystoreDetector(),
	}
}

// Scan walks root and runs the configured detectors against every eligible
// file. Files are processed concurrently; the finding multiset does not
// depend on the worker count. The scan itself never writes anything,
// persisting findings is the caller's step.
func Scan(root string, opts ...Option) (*Result, error) {
	so := scanOptions{
		detectors:   defaultDetectors(),
		secretScan:  true,
		workers:     runtime.NumCPU(),
		includeGlob: defaultIncludeGlob,
		gitMetadata: true,
	}

	for _, opt := range opts {
		opt(&so)
	}

	if !so.secretScan {
		kept := make([]detector.Detector, 0, len(so.detectors))
		for _, d := range so.detectors {
			if d.Category() != detector.CategorySecret {
				kept = append(kept, d)
			}
		}

		so.detectors = kept
	}

	if so.workers < 1 {
		so.workers = runtime.NumCPU()
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error reading scan root: %w", err)
	}

	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	includeGlob, err := glob.Compile(so.includeGlob)
	if err != nil {
		return nil, fmt.Errorf("error compiling include glob: %w", err)
	}

	var excludeGlob glob.Glob
	if so.excludeGlob != "" {
		if excludeGlob, err = glob.Compile(so.excludeGlob); err != nil {
			return nil, fmt.Errorf("error compiling exclude glob: %w", err)
		}
	}

	start := time.Now()

	targets, skipped, err := collectTargets(root, includeGlob, excludeGlob)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Findings:     []detector.Finding{},
		FilesSkipped: skipped,
	}

	jobs := make(chan *detector.Target)
	batches := make(chan fileBatch)

	wg := sync.WaitGroup{}
	for i := 0; i < so.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				batches <- scanTarget(target, so.detectors, so.mimeFilter)
			}
		}()
	}

	go func() {
		for _, target := range targets {
			jobs <- target
		}

		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(batches)
	}()

	done := 0
	for batch := range batches {
		done++
		if batch.skipped {
			result.FilesSkipped++
		} else {
			result.FilesScanned++
			result.Findings = append(result.Findings, batch.findings...)
		}

		if so.progress != nil {
			so.progress(done, len(targets))
		}
	}

	result.Duration = time.Since(start)

	if so.gitMetadata {
		if info, err := gitinfo.Lookup(root); err == nil {
			result.Git = info
		} else {
			log.Debugf("(crypscan) no git metadata for %v: %v", root, err)
		}
	}

	return result, nil
}

// collectTargets walks root and builds a Target for every scannable file that
// passes the glob filters, along with the count of files dropped on the way.
// Ignored directories are pruned without descending, and walk errors skip the
// offending entry rather than aborting the scan.
func collectTargets(root string, include, exclude glob.Glob) ([]*detector.Target, int, error) {
	targets := []*detector.Target{}
	skipped := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("(crypscan) walk error at %v: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if path != root && classify.IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		rel = filepath.ToSlash(rel)
		if !include.Match(rel) || (exclude != nil && exclude.Match(rel)) {
			skipped++
			return nil
		}

		target := detector.NewTarget(path)
		if !target.Class.Scannable() {
			skipped++
			return nil
		}

		targets = append(targets, target)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("error walking %s: %w", root, err)
	}

	return targets, skipped, nil
}

// fileBatch is the outcome of scanning a single file.
type fileBatch struct {
	findings []detector.Finding
	skipped  bool
}

// scanTarget runs every applicable detector against one file and returns the
// combined findings ordered by line number. A detector failure on one file is
// logged and swallowed so the rest of the scan continues.
func scanTarget(target *detector.Target, detectors []detector.Detector, mimeFilter bool) fileBatch {
	if mimeFilter && classify.SkipByMIME(target.Path) {
		log.Debugf("(crypscan) skipping %v by mime type", target.Path)
		return fileBatch{skipped: true}
	}

	findings := []detector.Finding{}
	for _, d := range detectors {
		if !d.Applies(target.Class) {
			continue
		}

		detected, err := d.Detect(target)
		if err != nil {
			log.Debugf("(crypscan) detector %v failed on %v: %v", d.Name(), target.Path, err)
			continue
		}

		findings = append(findings, detected...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].LineNumber < findings[j].LineNumber
	})

	return fileBatch{findings: findings}
}
