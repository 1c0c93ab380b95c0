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

package detector

import (
	"github.com/invopop/jsonschema"
)

// Category names the detector family a Finding came from.
type Category string

const (
	CategoryLibrary    Category = "library"
	CategoryKeystore   Category = "keystore"
	CategoryKeyCommand Category = "key-command"
	CategorySecret     Category = "secret"
)

// Match types carried in Finding.MatchType. The values mirror how the match
// was made, not what was matched.
const (
	MatchTypeImport   = "import"
	MatchTypeRequire  = "require"
	MatchTypeInclude  = "include"
	MatchTypeCommand  = "command"
	MatchTypeKeystore = "keystore"
	MatchTypeSecret   = "secret"
	MatchTypeFile     = "file"
)

// Source values carried in Finding.Source.
const (
	SourceHardcoded     = "hardcoded"
	SourceCommand       = "command"
	SourceFileExtension = "file extension"
	SourceManifest      = "manifest"
)

// Finding is one detected item of cryptographic interest. The serialized
// Finding array is the on-disk contract between scans and every downstream
// consumer, so field names are stable.
type Finding struct {
	// File is the path of the file the finding was made in.
	File string `json:"file"`
	// LineNumber is 1-based. 0 marks a file-level finding with no line.
	LineNumber int `json:"line_number"`
	// LineContent is the raw text of the matched line, empty for file-level
	// findings.
	LineContent string `json:"line_content"`
	MatchType   string `json:"match_type"`
	// Keyword is what was matched: a library name, a secret rule label, a
	// command pattern, or a keystore extension.
	Keyword string `json:"keyword"`
	// Context is a short human readable description of the match.
	Context string `json:"context"`
	// Version is the library version when one is known.
	Version string `json:"version,omitempty"`
	// Language is the best-effort source language of the file.
	Language string `json:"language"`
	// Source describes how the finding was located.
	Source string `json:"source"`
	// Category is the detector family that produced the finding.
	Category Category `json:"category"`
}

// FindingsSchema returns the JSON schema of a Finding report.
func FindingsSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&[]Finding{})
}
