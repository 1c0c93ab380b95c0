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

// Package classify decides which files a scan should look at and how.
// Classification is based on file names only; the single exception is the
// optional MIME gate, which sniffs the first bytes of a file to weed out
// prose before any detector runs.
package classify

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Result holds the eligibility flags for a single file. The flags are
// independent: a file may be eligible for several detector families at once.
type Result struct {
	// Code marks files source-code detectors should read.
	Code bool
	// Config marks configuration files, which are only scanned for secrets.
	Config bool
	// Keystore marks key material carried as a file, identified by extension
	// alone. Keystore files are never opened.
	Keystore bool
	// Manifest marks dependency manifests with their own parsers.
	Manifest bool
}

// Scannable reports whether any detector family applies to the file.
func (r Result) Scannable() bool {
	return r.Code || r.Config || r.Keystore || r.Manifest
}

// Directory names excluded from every scan. Matching is case-insensitive and
// applies to every path component, so an excluded directory removes its whole
// subtree.
var ignoredDirs = map[string]struct{}{
	"css":          {},
	"style":        {},
	"styles":       {},
	"scss":         {},
	"less":         {},
	"assets":       {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
	".git":         {},
	".idea":        {},
}

var codeExtensions = map[string]struct{}{
	"rs":    {},
	"py":    {},
	"java":  {},
	"js":    {},
	"ts":    {},
	"mjs":   {},
	"go":    {},
	"c":     {},
	"cpp":   {},
	"h":     {},
	"hpp":   {},
	"php":   {},
	"cs":    {},
	"kt":    {},
	"kts":   {},
	"swift": {},
	"scala": {},
	"rb":    {},
	"sh":    {},
	"ps1":   {},
	"cmd":   {},
}

var configExtensions = map[string]struct{}{
	"env":        {},
	"yml":        {},
	"yaml":       {},
	"json":       {},
	"toml":       {},
	"ini":        {},
	"conf":       {},
	"config":     {},
	"properties": {},
}

var configBasenames = map[string]struct{}{
	"config":      {},
	"secrets":     {},
	"credentials": {},
	"settings":    {},
}

var keystoreExtensions = map[string]struct{}{
	"pem": {},
	"crt": {},
	"cer": {},
	"key": {},
	"jks": {},
	"p12": {},
	"pfx": {},
	"asc": {},
	"gpg": {},
	"der": {},
}

var manifestBasenames = map[string]struct{}{
	"go.mod": {},
}

// MIME prefixes the optional gate skips. Prose and logs produce noisy
// secret matches and never carry library imports.
var skippedMIMEPrefixes = []string{
	"text/markdown",
	"text/plain",
	"application/log",
}

// mimeSniffLen is how many leading bytes the MIME gate reads.
const mimeSniffLen = 512

// Classify determines which detector families apply to the named file. It
// never touches the file's content.
func Classify(path string) Result {
	ext := Extension(path)
	base := strings.ToLower(filepath.Base(path))

	result := Result{}
	if _, ok := codeExtensions[ext]; ok {
		result.Code = true
	}

	if _, ok := configExtensions[ext]; ok {
		result.Config = true
	} else if _, ok := configBasenames[base]; ok {
		result.Config = true
	} else if strings.HasPrefix(base, ".env") {
		result.Config = true
	}

	if _, ok := keystoreExtensions[ext]; ok {
		result.Keystore = true
	}

	if _, ok := manifestBasenames[base]; ok {
		result.Manifest = true
	}

	return result
}

// Extension returns the lowercased file extension without the leading dot.
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}

	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsIgnoredPath reports whether any component of path matches the ignored
// directory list.
func IsIgnoredPath(path string) bool {
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ok := ignoredDirs[strings.ToLower(component)]; ok {
			return true
		}
	}

	return false
}

// IsIgnoredDir reports whether a single directory name is on the ignored
// list. Walkers use this to prune whole subtrees early.
func IsIgnoredDir(name string) bool {
	_, ok := ignoredDirs[strings.ToLower(name)]
	return ok
}

// SkipByMIME sniffs the first bytes of the file and reports whether its
// detected MIME type falls under one of the skipped prefixes. Files that
// cannot be read or identified are kept.
func SkipByMIME(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, mimeSniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}

	return skipByDetectedMIME(mimetype.Detect(buf[:n]).String())
}

func skipByDetectedMIME(detected string) bool {
	for _, prefix := range skippedMIMEPrefixes {
		if strings.HasPrefix(detected, prefix) {
			return true
		}
	}

	return false
}
