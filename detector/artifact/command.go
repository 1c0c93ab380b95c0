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

package artifact

import (
	"fmt"
	"strings"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
)

const (
	CommandName = "key-command"

	// commandLanguage is reported on key command findings. The commands are
	// shell invocations regardless of the file they appear in.
	commandLanguage = "Shell"
)

var _ detector.Detector = &CommandDetector{}

func init() {
	detector.RegisterDetector(CommandName, func() detector.Detector { return NewCommandDetector() })
}

// commandPatterns are literal key management command invocations matched as
// substrings of a line. The label names the tool for the finding context.
var commandPatterns = []struct {
	pattern string
	label   string
}{
	{"openssl genpkey", "OpenSSL"},
	{"openssl rsa", "OpenSSL"},
	{"keytool -genkey", "keytool"},
	{"gpg --gen-key", "GPG"},
	{"gpg --import", "GPG"},
	{"ssh-keygen", "SSH"},
	{"az keyvault", "Azure Key Vault"},
	{"aws kms", "AWS KMS"},
	{"vault kv", "HashiCorp Vault"},
	{"cfssl genkey", "CFSSL"},
}

// CommandDetector finds invocations of key and certificate management tools
// in source and script files.
type CommandDetector struct{}

func NewCommandDetector() *CommandDetector {
	return &CommandDetector{}
}

func (d *CommandDetector) Name() string {
	return CommandName
}

func (d *CommandDetector) Category() detector.Category {
	return detector.CategoryKeyCommand
}

func (d *CommandDetector) Applies(c classify.Result) bool {
	return c.Code
}

// Detect scans each line for key management command invocations. Lines that
// start with comment syntax are skipped, and every matching pattern on a line
// yields its own finding.
func (d *CommandDetector) Detect(t *detector.Target) ([]detector.Finding, error) {
	lines, err := t.Lines()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", t.Path, err)
	}

	var findings []detector.Finding
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		for _, cp := range commandPatterns {
			if !strings.Contains(line, cp.pattern) {
				continue
			}

			findings = append(findings, detector.Finding{
				File:        t.Path,
				LineNumber:  i + 1,
				LineContent: line,
				MatchType:   detector.MatchTypeCommand,
				Keyword:     cp.pattern,
				Context:     cp.label,
				Language:    commandLanguage,
				Source:      detector.SourceCommand,
				Category:    detector.CategoryKeyCommand,
			})
		}
	}

	return findings, nil
}
