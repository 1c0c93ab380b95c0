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

package cbom

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/gitinfo"
	"github.com/Link2Trust/crypscan/log"
	"github.com/google/uuid"
)

const (
	bomFormat      = "CycloneDX"
	bomSpecVersion = "1.6"
	targetBOMRef   = "target-component"
	defaultAppName = "scanned-application"
	maxListedFiles = 3
)

const (
	componentTypeApplication = "application"
	componentTypeLibrary     = "library"
	componentTypeFile        = "file"
)

// DefaultTool identifies this scanner in generated documents.
func DefaultTool() Tool {
	return Tool{
		Vendor:      "Link2Trust",
		Name:        "crypscan",
		Version:     "0.1.0",
		Description: "Cryptographic security analysis tool",
	}
}

// Generator synthesizes documents from findings. The zero value is not
// usable; construct with NewGenerator.
type Generator struct {
	tool       Tool
	targetName string
	git        *gitinfo.Info
}

// Option configures a Generator.
type Option func(*Generator)

// WithTool overrides the tool identity recorded in document metadata.
func WithTool(tool Tool) Option {
	return func(g *Generator) {
		g.tool = tool
	}
}

// WithTargetName sets the name of the application component the scan ran
// against.
func WithTargetName(name string) Option {
	return func(g *Generator) {
		g.targetName = name
	}
}

// WithGit attaches repository metadata to the target component description.
func WithGit(info *gitinfo.Info) Option {
	return func(g *Generator) {
		g.git = info
	}
}

// NewGenerator returns a Generator with the default tool identity applied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		tool: DefaultTool(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate synthesizes a document from findings. Outside of the serial
// number and the timestamps the result is a pure function of the findings
// and the generator's configuration: component bomRefs are derived from the
// findings themselves, so two runs over the same tree agree on identifiers.
func (g *Generator) Generate(findings []detector.Finding) (*Document, error) {
	now := time.Now().UTC()

	components := []Component{}
	components = append(components, libraryComponents(findings)...)
	components = append(components, keystoreComponents(findings)...)

	if n := countCategory(findings, detector.CategoryKeyCommand); n > 0 {
		log.Debugf("(cbom) %v key management command findings contribute no components", n)
	}

	return &Document{
		BOMFormat:    bomFormat,
		SpecVersion:  bomSpecVersion,
		Version:      1,
		SerialNumber: "urn:uuid:" + uuid.New().String(),
		Metadata: Metadata{
			Timestamp: now,
			Tools:     []Tool{g.tool},
			Component: g.targetComponent(),
		},
		Components:   components,
		Declarations: g.declarations(findings, now),
	}, nil
}

func (g *Generator) targetComponent() Component {
	name := g.targetName
	if name == "" {
		name = defaultAppName
	}

	description := fmt.Sprintf("Application analyzed by %s", g.tool.Name)
	if g.git != nil && g.git.CommitHash != "" {
		description += fmt.Sprintf(" at commit %s", g.git.ShortHash())
		if g.git.Branch != "" {
			description += fmt.Sprintf(" on %s", g.git.Branch)
		}
	}

	return Component{
		Type:        componentTypeApplication,
		BOMRef:      targetBOMRef,
		Name:        name,
		Version:     "unknown",
		Description: description,
	}
}

// libraryComponents emits one component per (keyword, version) group of
// library findings, ordered by group key.
func libraryComponents(findings []detector.Finding) []Component {
	groups := map[string][]detector.Finding{}
	for _, f := range findings {
		if f.Category != detector.CategoryLibrary {
			continue
		}

		key := libraryKey(f)
		groups[key] = append(groups[key], f)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	components := make([]Component, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		first := group[0]

		components = append(components, Component{
			Type:             componentTypeLibrary,
			BOMRef:           "crypto-lib-" + slugify(key),
			Name:             first.Keyword,
			Version:          first.Version,
			Description:      libraryDescription(group),
			CryptoProperties: AlgorithmAsset(inferAlgorithms(first.Keyword)...),
		})
	}

	return components
}

// libraryKey groups findings of the same library and version. Findings
// without a resolved version all land in the "unknown" group of their
// keyword.
func libraryKey(f detector.Finding) string {
	version := f.Version
	if version == "" {
		version = "unknown"
	}

	return f.Keyword + "_" + version
}

// libraryDescription lists the distinct files a library was seen in, sorted
// and capped at maxListedFiles.
func libraryDescription(group []detector.Finding) string {
	seen := map[string]struct{}{}
	files := []string{}
	for _, f := range group {
		if _, ok := seen[f.File]; ok {
			continue
		}

		seen[f.File] = struct{}{}
		files = append(files, f.File)
	}
	sort.Strings(files)

	if len(files) > maxListedFiles {
		return fmt.Sprintf("Cryptographic library detected in %s and %v more files", strings.Join(files[:maxListedFiles], ", "), len(files)-maxListedFiles)
	}

	return fmt.Sprintf("Cryptographic library detected in %s", strings.Join(files, ", "))
}

// keystoreComponents emits one file component per keystore finding, in
// finding order.
func keystoreComponents(findings []detector.Finding) []Component {
	components := []Component{}
	for _, f := range findings {
		if f.Category != detector.CategoryKeystore {
			continue
		}

		ref := "keystore-" + pathDigest(f.File)
		description := f.Context
		if description == "" {
			description = "Cryptographic keystore file"
		}

		components = append(components, Component{
			Type:             componentTypeFile,
			BOMRef:           ref,
			Name:             filepath.Base(f.File),
			Description:      fmt.Sprintf("%s: %s", description, f.File),
			CryptoProperties: keystoreProperties(f.File, ref),
		})
	}

	return components
}

// Keystore extensions carrying certificate material versus raw key material.
// Remaining keystore types (asc, gpg, der) are inventoried as plain file
// components without property details.
var certificateExtensions = map[string]struct{}{
	"pem": {},
	"crt": {},
	"cer": {},
}

var keyMaterialExtensions = map[string]struct{}{
	"key": {},
	"jks": {},
	"p12": {},
	"pfx": {},
}

func keystoreProperties(path, bomRef string) *CryptoProperties {
	ext := classify.Extension(path)
	if _, ok := certificateExtensions[ext]; ok {
		return CertificateAsset(CertificateProperties{
			CertificateFormat: "X.509",
		})
	}

	if _, ok := keyMaterialExtensions[ext]; ok {
		return KeyAsset(RelatedCryptoMaterial{
			Type:  "private-key",
			ID:    bomRef,
			State: "unknown",
		})
	}

	return nil
}

// declarations derives the risk assessments. It returns nil when nothing
// applies, which drops the declarations key from the document entirely.
func (g *Generator) declarations(findings []detector.Finding, now time.Time) *Declarations {
	assessments := []RiskAssessment{}

	if n := countCategory(findings, detector.CategorySecret); n > 0 {
		var level string
		switch {
		case n <= 2:
			level = "medium"
		case n <= 5:
			level = "high"
		default:
			level = "critical"
		}

		assessments = append(assessments, RiskAssessment{
			Scope:       "secrets",
			RiskLevel:   level,
			Description: fmt.Sprintf("Found %v hardcoded secrets in codebase", n),
			Mitigation:  "Rotate exposed secrets and implement secure secret management",
		})
	}

	libraries := map[string]struct{}{}
	for _, f := range findings {
		if f.Category == detector.CategoryLibrary {
			libraries[f.Keyword] = struct{}{}
		}
	}

	if len(libraries) > 5 {
		assessments = append(assessments, RiskAssessment{
			Scope:       "library-complexity",
			RiskLevel:   "medium",
			Description: fmt.Sprintf("High cryptographic library diversity (%v unique libraries)", len(libraries)),
			Mitigation:  "Consider consolidating cryptographic implementations",
		})
	}

	if len(assessments) == 0 {
		return nil
	}

	return &Declarations{
		Assessor:        fmt.Sprintf("%s v%s", g.tool.Name, g.tool.Version),
		AssessmentDate:  now,
		RiskAssessments: assessments,
	}
}

const (
	executionEnvironmentSoftware = "software-plain-ram"
	implementationPlatformX86    = "x86_64"
)

// Algorithm entries the inference table hands out. The numbers describe the
// default configurations of well known libraries, not the observed usage.
var (
	algorithmAES256 = AlgorithmProperties{
		Name:                     "AES-256",
		Primitive:                "symmetric-encryption",
		KeySize:                  256,
		ExecutionEnvironment:     executionEnvironmentSoftware,
		ImplementationPlatform:   implementationPlatformX86,
		CryptoFunctions:          []string{"encrypt", "decrypt"},
		ClassicalSecurityLevel:   256,
		NISTQuantumSecurityLevel: 5,
	}

	algorithmRSA2048 = AlgorithmProperties{
		Name:                     "RSA-2048",
		Primitive:                "digital-signature",
		KeySize:                  2048,
		ExecutionEnvironment:     executionEnvironmentSoftware,
		ImplementationPlatform:   implementationPlatformX86,
		CryptoFunctions:          []string{"sign", "verify"},
		ClassicalSecurityLevel:   112,
		NISTQuantumSecurityLevel: 3,
	}

	algorithmSHA256 = AlgorithmProperties{
		Name:                     "SHA-256",
		Primitive:                "hash",
		ExecutionEnvironment:     executionEnvironmentSoftware,
		ImplementationPlatform:   implementationPlatformX86,
		CryptoFunctions:          []string{"digest"},
		ClassicalSecurityLevel:   256,
		NISTQuantumSecurityLevel: 5,
	}
)

// inferAlgorithms maps a library name onto the algorithms it is assumed to
// provide. Matching is by case insensitive substring and the order matters:
// a name containing both "openssl" and "crypto" resolves as OpenSSL.
// Unrecognized libraries fall through to a placeholder entry carrying the
// literal name.
func inferAlgorithms(library string) []AlgorithmProperties {
	name := strings.ToLower(library)

	switch {
	case strings.Contains(name, "openssl"):
		return []AlgorithmProperties{algorithmAES256, algorithmRSA2048}
	case strings.Contains(name, "bouncycastle"):
		return []AlgorithmProperties{algorithmAES256}
	case strings.Contains(name, "crypto"):
		return []AlgorithmProperties{algorithmSHA256}
	default:
		return []AlgorithmProperties{{
			Name:      library,
			Primitive: "unknown",
		}}
	}
}

func countCategory(findings []detector.Finding, category detector.Category) int {
	n := 0
	for _, f := range findings {
		if f.Category == category {
			n++
		}
	}

	return n
}

// pathDigest returns the stable eight character bomRef suffix for a keystore
// path.
func pathDigest(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:4])
}

// slugify collapses s into a lowercase dash separated identifier suitable
// for a bomRef.
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
