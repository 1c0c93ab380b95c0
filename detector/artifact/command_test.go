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
	"strings"
	"testing"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDetect(t *testing.T) {
	content := strings.Join([]string{
		"#!/bin/sh",
		"# ssh-keygen -t rsa commented out",
		"ssh-keygen -t ed25519 -f deploy_key",
		"openssl genpkey -algorithm RSA -out priv.pem",
		"echo done",
		`aws kms create-key --description "app key"`,
	}, "\n") + "\n"

	target := writeTarget(t, "provision.sh", content)

	findings, err := NewCommandDetector().Detect(target)
	require.NoError(t, err)
	require.Len(t, findings, 3)

	assert.Equal(t, "ssh-keygen", findings[0].Keyword)
	assert.Equal(t, "SSH", findings[0].Context)
	assert.Equal(t, 3, findings[0].LineNumber)

	assert.Equal(t, "openssl genpkey", findings[1].Keyword)
	assert.Equal(t, "OpenSSL", findings[1].Context)
	assert.Equal(t, 4, findings[1].LineNumber)

	assert.Equal(t, "aws kms", findings[2].Keyword)
	assert.Equal(t, "AWS KMS", findings[2].Context)
	assert.Equal(t, 6, findings[2].LineNumber)

	for _, f := range findings {
		assert.Equal(t, detector.MatchTypeCommand, f.MatchType)
		assert.Equal(t, "Shell", f.Language)
		assert.Equal(t, detector.SourceCommand, f.Source)
		assert.Equal(t, detector.CategoryKeyCommand, f.Category)
		assert.NotEmpty(t, f.LineContent)
	}
}

func TestCommandDetectMultiplePerLine(t *testing.T) {
	line := "openssl genpkey -out k.pem && openssl rsa -in k.pem -pubout"
	target := writeTarget(t, "gen.sh", line+"\n")

	findings, err := NewCommandDetector().Detect(target)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "openssl genpkey", findings[0].Keyword)
	assert.Equal(t, "openssl rsa", findings[1].Keyword)
	assert.Equal(t, findings[0].LineNumber, findings[1].LineNumber)
}

func TestCommandDetectSkipsComments(t *testing.T) {
	content := strings.Join([]string{
		"// keytool -genkey -alias app",
		"* vault kv get secret/app",
		"# gpg --import key.asc",
		"keytool -genkey -alias app -keystore app.jks",
	}, "\n") + "\n"

	target := writeTarget(t, "setup.sh", content)

	findings, err := NewCommandDetector().Detect(target)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "keytool -genkey", findings[0].Keyword)
	assert.Equal(t, 4, findings[0].LineNumber)
}

func TestCommandApplies(t *testing.T) {
	d := NewCommandDetector()

	assert.True(t, d.Applies(classify.Result{Code: true}))
	assert.False(t, d.Applies(classify.Result{Config: true}))
	assert.False(t, d.Applies(classify.Result{Keystore: true}))
}
