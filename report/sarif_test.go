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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Link2Trust/crypscan/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sarifDocument is the subset of SARIF 2.1.0 the tests inspect.
type sarifDocument struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID    string `json:"ruleId"`
			Level     string `json:"level"`
			Message   struct {
				Text string `json:"text"`
			} `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine   int `json:"startLine"`
						StartColumn int `json:"startColumn"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

func TestWriteSARIF(t *testing.T) {
	findings := []detector.Finding{
		{
			File:       "src/app.py",
			LineNumber: 3,
			MatchType:  detector.MatchTypeSecret,
			Keyword:    "AWS Access Key",
			Context:    "AWS Access Key ID",
			Category:   detector.CategorySecret,
		},
		{
			File:       "src/main.rs",
			LineNumber: 2,
			MatchType:  detector.MatchTypeImport,
			Keyword:    "openssl",
			Context:    "import",
			Category:   detector.CategoryLibrary,
		},
		{
			File:      "certs/server.pem",
			MatchType: detector.MatchTypeKeystore,
			Keyword:   "pem",
			Context:   "PEM file",
			Category:  detector.CategoryKeystore,
		},
		{
			File:       "scripts/gen.sh",
			LineNumber: 5,
			MatchType:  detector.MatchTypeCommand,
			Keyword:    "ssh-keygen",
			Context:    "SSH",
			Category:   detector.CategoryKeyCommand,
		},
		{
			File:       "src/other.py",
			LineNumber: 9,
			MatchType:  detector.MatchTypeSecret,
			Keyword:    "AWS Access Key",
			Context:    "AWS Access Key ID",
			Category:   detector.CategorySecret,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, findings))

	var doc sarifDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "crypscan", run.Tool.Driver.Name)

	// Two secret findings share one rule, so four rules cover five results.
	require.Len(t, run.Tool.Driver.Rules, 4)
	ruleIDs := make([]string, 0, len(run.Tool.Driver.Rules))
	for _, rule := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, rule.ID)
	}
	assert.Contains(t, ruleIDs, "secret/aws-access-key")
	assert.Contains(t, ruleIDs, "library/openssl")
	assert.Contains(t, ruleIDs, "keystore/pem")
	assert.Contains(t, ruleIDs, "key-command/ssh-keygen")

	require.Len(t, run.Results, 5)

	byRule := make(map[string]string)
	for _, result := range run.Results {
		byRule[result.RuleID] = result.Level
	}
	assert.Equal(t, "error", byRule["secret/aws-access-key"])
	assert.Equal(t, "note", byRule["library/openssl"])
	assert.Equal(t, "note", byRule["keystore/pem"])
	assert.Equal(t, "warning", byRule["key-command/ssh-keygen"])

	// The file-level keystore finding maps to line 1.
	for _, result := range run.Results {
		if result.RuleID != "keystore/pem" {
			continue
		}
		require.Len(t, result.Locations, 1)
		location := result.Locations[0].PhysicalLocation
		assert.Equal(t, "certs/server.pem", location.ArtifactLocation.URI)
		assert.Equal(t, 1, location.Region.StartLine)
		assert.Equal(t, 1, location.Region.StartColumn)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AWS Access Key", "aws-access-key"},
		{"golang.crypto", "golang-crypto"},
		{"openssl genpkey", "openssl-genpkey"},
		{"PKCS#12 Keystore", "pkcs-12-keystore"},
		{"jsonwebtoken", "jsonwebtoken"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
