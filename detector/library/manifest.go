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

package library

import (
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/Link2Trust/crypscan/detector"
)

// Module path fragments that mark a dependency as cryptographic.
var cryptoModuleMarkers = []string{
	"crypto",
	"tls",
	"x509",
	"pkcs",
	"jose",
	"jwt",
	"ssh",
	"secret",
}

// detectManifest parses a go.mod file and reports require directives whose
// module path looks cryptographic. Unlike the code scan, versions here come
// from the manifest itself.
func (d *Detector) detectManifest(t *detector.Target) ([]detector.Finding, error) {
	content, err := t.Content()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.Path, err)
	}

	file, err := modfile.ParseLax(t.Path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.Path, err)
	}

	findings := []detector.Finding{}
	for _, require := range file.Require {
		label, ok := cryptoModuleLabel(require.Mod.Path)
		if !ok {
			continue
		}

		line := 0
		if require.Syntax != nil {
			line = require.Syntax.Start.Line
		}

		findings = append(findings, detector.Finding{
			File:        t.Path,
			LineNumber:  line,
			LineContent: require.Mod.Path + " " + require.Mod.Version,
			MatchType:   detector.MatchTypeRequire,
			Keyword:     label,
			Context:     detector.SourceManifest,
			Version:     strings.TrimPrefix(require.Mod.Version, "v"),
			Language:    "Go",
			Source:      detector.SourceManifest,
			Category:    detector.CategoryLibrary,
		})
	}

	return findings, nil
}

// cryptoModuleLabel reports whether a module path is cryptographic and the
// library name findings should carry for it.
func cryptoModuleLabel(modulePath string) (string, bool) {
	lower := strings.ToLower(modulePath)
	if lower == "golang.org/x/crypto" || strings.HasPrefix(lower, "golang.org/x/crypto/") {
		return "golang.crypto", true
	}

	for _, marker := range cryptoModuleMarkers {
		if strings.Contains(lower, marker) {
			return modulePath, true
		}
	}

	return "", false
}
