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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Link2Trust/crypscan/detector"
	"github.com/owenrumney/go-sarif/sarif"
)

const (
	sarifToolName       = "crypscan"
	sarifInformationURI = "https://github.com/Link2Trust/crypscan"
)

// WriteSARIF exports findings as a SARIF 2.1.0 document with a single run.
// Each distinct (category, keyword) pair becomes a rule and each finding a
// result located at its file and line. File-level findings have no line of
// their own and are reported at line 1.
func WriteSARIF(w io.Writer, findings []detector.Finding) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("error creating sarif report: %w", err)
	}

	run := sarif.NewRun(sarifToolName, sarifInformationURI)

	seenRules := make(map[string]bool)
	for _, f := range findings {
		id := sarifRuleID(f)
		if !seenRules[id] {
			run.AddRule(id).WithDescription(f.Context)
			seenRules[id] = true
		}

		line := f.LineNumber
		if line < 1 {
			line = 1
		}

		run.AddResult(id).
			WithLevel(sarifLevel(f.Category)).
			WithMessage(fmt.Sprintf("%s: %s", f.Keyword, f.Context)).
			WithLocationDetails(f.File, line, 1)
	}

	doc.AddRun(run)

	if err := doc.Write(w); err != nil {
		return fmt.Errorf("error writing sarif report: %w", err)
	}

	return nil
}

func sarifRuleID(f detector.Finding) string {
	return string(f.Category) + "/" + slugify(f.Keyword)
}

// sarifLevel maps finding categories to SARIF result levels. Leaked secrets
// are failures, key management commands deserve review, and library or
// keystore inventory entries are informational.
func sarifLevel(category detector.Category) string {
	switch category {
	case detector.CategorySecret:
		return "error"
	case detector.CategoryKeyCommand:
		return "warning"
	default:
		return "note"
	}
}

// slugify lowercases s and collapses every non-alphanumeric run into a single
// dash, yielding stable rule identifiers.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
