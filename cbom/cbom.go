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

// Package cbom synthesizes a cryptography bill of materials from scan
// findings. The document model follows the CycloneDX 1.6 shape with
// lowerCamelCase field names and can additionally be re-encoded through the
// official CycloneDX encoder.
package cbom

import (
	"time"

	"github.com/invopop/jsonschema"
)

// Document is the root of a generated CBOM. A document is built once by a
// Generator, serialized, and never mutated afterwards.
type Document struct {
	// BOMFormat is always "CycloneDX".
	BOMFormat string `json:"bomFormat"`
	// SpecVersion is the CycloneDX specification version the shape follows.
	SpecVersion string `json:"specVersion"`
	// Version is the document revision, always 1 for freshly generated
	// documents.
	Version int `json:"version"`
	// SerialNumber is an RFC 4122 URN, unique per generated document.
	SerialNumber string   `json:"serialNumber"`
	Metadata     Metadata `json:"metadata"`
	// Components lists one entry per distinguishable cryptographic asset.
	Components []Component `json:"components"`
	// Declarations carries risk assessments and is omitted entirely when no
	// assessment applies.
	Declarations *Declarations `json:"declarations,omitempty"`
}

// Metadata describes when the document was generated, by what, and for which
// target.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Tools     []Tool    `json:"tools"`
	// Component is the application the scan ran against.
	Component Component `json:"component"`
}

// Tool identifies the scanner that produced a document.
type Tool struct {
	Vendor      string `json:"vendor"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Component is a single cryptographic asset: a detected library, a keystore
// file, or the scanned application itself in document metadata.
type Component struct {
	Type   string `json:"type"`
	BOMRef string `json:"bomRef"`
	Name   string `json:"name"`
	// Version is set when the detector resolved one, typically only for
	// manifest findings.
	Version          string            `json:"version,omitempty"`
	Description      string            `json:"description,omitempty"`
	CryptoProperties *CryptoProperties `json:"cryptoProperties,omitempty"`
}

// Declarations holds the heuristic risk assessments derived from findings.
type Declarations struct {
	// Assessor names the tool and version that produced the assessments.
	Assessor       string    `json:"assessor"`
	AssessmentDate time.Time `json:"assessmentDate"`
	// RiskAssessments is never empty: a Declarations value only exists when
	// at least one assessment applies.
	RiskAssessments []RiskAssessment `json:"riskAssessments,omitempty"`
}

// RiskAssessment is one scored observation about the scanned codebase.
type RiskAssessment struct {
	// Scope names what was assessed, for example "secrets".
	Scope string `json:"scope"`
	// RiskLevel is one of low, medium, high, or critical.
	RiskLevel string `json:"riskLevel"`
	// Score is an optional numeric weight for consumers that rank findings.
	Score       float64 `json:"score,omitempty"`
	Description string  `json:"description"`
	Mitigation  string  `json:"mitigation,omitempty"`
}

// DocumentSchema returns the JSON schema of a generated document.
func DocumentSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Document{})
}
