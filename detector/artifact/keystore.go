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

// Package artifact holds the detectors for cryptographic artifacts that are
// not source text matches: keystore and certificate files recognized by
// extension, and key management commands invoked from scripts and code.
package artifact

import (
	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
)

const (
	KeystoreName = "keystore"

	// keystoreLanguage is reported on keystore findings in place of a source
	// language, since the file is key material rather than code.
	keystoreLanguage = "Binary/File"
)

var _ detector.Detector = &KeystoreDetector{}

func init() {
	detector.RegisterDetector(KeystoreName, func() detector.Detector { return NewKeystoreDetector() })
}

// keystoreLabels maps a keystore file extension to the label reported as the
// finding context.
var keystoreLabels = map[string]string{
	"pem": "PEM file",
	"crt": "X.509 cert",
	"cer": "X.509 cert",
	"key": "Private key",
	"jks": "Java Keystore",
	"p12": "PKCS#12 Keystore",
	"pfx": "PKCS#12 Keystore",
	"asc": "GPG key",
	"gpg": "GPG encrypted",
	"der": "DER binary cert",
}

// KeystoreDetector recognizes keystore, certificate, and key material files
// by extension. It produces at most one file-level finding per file and never
// reads file content, so it is safe to run against large binaries.
type KeystoreDetector struct{}

func NewKeystoreDetector() *KeystoreDetector {
	return &KeystoreDetector{}
}

func (d *KeystoreDetector) Name() string {
	return KeystoreName
}

func (d *KeystoreDetector) Category() detector.Category {
	return detector.CategoryKeystore
}

func (d *KeystoreDetector) Applies(c classify.Result) bool {
	return c.Keystore
}

// Detect reports a single file-level finding when the target's extension is a
// known keystore format. The finding carries line number 0 and no line
// content, the keyword is the extension itself, and the context names the
// format.
func (d *KeystoreDetector) Detect(t *detector.Target) ([]detector.Finding, error) {
	ext := classify.Extension(t.Path)
	label, ok := keystoreLabels[ext]
	if !ok {
		return nil, nil
	}

	return []detector.Finding{{
		File:        t.Path,
		LineNumber:  0,
		LineContent: "",
		MatchType:   detector.MatchTypeKeystore,
		Keyword:     ext,
		Context:     label,
		Language:    keystoreLanguage,
		Source:      detector.SourceFileExtension,
		Category:    detector.CategoryKeystore,
	}}, nil
}
