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
	"encoding/json"
	"fmt"
	"io"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Formats accepted by ExportCycloneDX.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// propertyNamespace prefixes every component property emitted by the
// CycloneDX bridge.
const propertyNamespace = "crypscan"

// ExportJSON writes the canonical pretty printed JSON form of the document.
func ExportJSON(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling cbom document: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing cbom document: %w", err)
	}

	return nil
}

// ExportXML writes an XML envelope whose body carries the canonical JSON
// form inside a comment. The JSON form remains the source of truth.
func ExportXML(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling cbom document: %w", err)
	}

	if _, err := fmt.Fprintf(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<cbom>\n<!-- JSON representation: -->\n<!-- %s -->\n</cbom>", data); err != nil {
		return fmt.Errorf("error writing cbom document: %w", err)
	}

	return nil
}

// ExportCycloneDX re-encodes the document with the official CycloneDX
// encoder in the requested format. Crypto details and risk assessments are
// flattened into namespaced properties since they have no slot in the
// general component model.
func ExportCycloneDX(w io.Writer, doc *Document, format string) error {
	var fileFormat cdx.BOMFileFormat
	switch format {
	case FormatJSON:
		fileFormat = cdx.BOMFileFormatJSON
	case FormatXML:
		fileFormat = cdx.BOMFileFormatXML
	default:
		return fmt.Errorf("unsupported cyclonedx format: %s", format)
	}

	encoder := cdx.NewBOMEncoder(w, fileFormat)
	encoder.SetPretty(true)
	if err := encoder.Encode(toCycloneDX(doc)); err != nil {
		return fmt.Errorf("error encoding cyclonedx bom: %w", err)
	}

	return nil
}

func toCycloneDX(doc *Document) *cdx.BOM {
	bom := cdx.NewBOM()
	bom.SerialNumber = doc.SerialNumber
	bom.SpecVersion = cdx.SpecVersion1_6
	bom.Version = doc.Version

	target := componentToCycloneDX(doc.Metadata.Component)
	metadata := &cdx.Metadata{
		Timestamp: doc.Metadata.Timestamp.Format(time.RFC3339),
		Component: &target,
	}

	if len(doc.Metadata.Tools) > 0 {
		tools := make([]cdx.Tool, 0, len(doc.Metadata.Tools))
		for _, t := range doc.Metadata.Tools {
			tools = append(tools, cdx.Tool{
				Vendor:  t.Vendor,
				Name:    t.Name,
				Version: t.Version,
			})
		}
		metadata.Tools = &cdx.ToolsChoice{Tools: &tools}
	}

	if doc.Declarations != nil && len(doc.Declarations.RiskAssessments) > 0 {
		props := make([]cdx.Property, 0, len(doc.Declarations.RiskAssessments))
		for _, ra := range doc.Declarations.RiskAssessments {
			props = append(props, cdx.Property{
				Name:  propertyNamespace + ":risk:" + ra.Scope,
				Value: fmt.Sprintf("%s: %s", ra.RiskLevel, ra.Description),
			})
		}
		metadata.Properties = &props
	}

	bom.Metadata = metadata

	components := make([]cdx.Component, 0, len(doc.Components))
	for _, c := range doc.Components {
		components = append(components, componentToCycloneDX(c))
	}
	bom.Components = &components

	return bom
}

func componentToCycloneDX(c Component) cdx.Component {
	out := cdx.Component{
		BOMRef:      c.BOMRef,
		Type:        componentTypeToCycloneDX(c.Type),
		Name:        c.Name,
		Version:     c.Version,
		Description: c.Description,
	}

	if props := cryptoPropertyList(c.CryptoProperties); len(props) > 0 {
		out.Properties = &props
	}

	return out
}

func componentTypeToCycloneDX(t string) cdx.ComponentType {
	switch t {
	case componentTypeLibrary:
		return cdx.ComponentTypeLibrary
	case componentTypeFile:
		return cdx.ComponentTypeFile
	default:
		return cdx.ComponentTypeApplication
	}
}

func cryptoPropertyList(p *CryptoProperties) []cdx.Property {
	if p == nil {
		return nil
	}

	props := []cdx.Property{{
		Name:  propertyNamespace + ":assetType",
		Value: string(p.AssetType()),
	}}

	switch p.AssetType() {
	case AssetTypeAlgorithm:
		for _, alg := range p.Algorithms() {
			props = append(props, cdx.Property{
				Name:  propertyNamespace + ":algorithm",
				Value: describeAlgorithm(alg),
			})
		}
	case AssetTypeCertificate:
		if cert := p.Certificate(); cert != nil && cert.CertificateFormat != "" {
			props = append(props, cdx.Property{
				Name:  propertyNamespace + ":certificateFormat",
				Value: cert.CertificateFormat,
			})
		}
	case AssetTypeKey, AssetTypeRelatedCryptoMaterial:
		for _, m := range p.Material() {
			props = append(props, cdx.Property{
				Name:  propertyNamespace + ":material",
				Value: describeMaterial(m),
			})
		}
	case AssetTypeProtocol:
		if proto := p.Protocol(); proto != nil {
			props = append(props, cdx.Property{
				Name:  propertyNamespace + ":protocol",
				Value: describeProtocol(proto),
			})
		}
	}

	return props
}

func describeAlgorithm(alg AlgorithmProperties) string {
	name := alg.Name
	if name == "" {
		name = alg.Primitive
	}

	if alg.KeySize > 0 {
		return fmt.Sprintf("%s (%s, %v bit)", name, alg.Primitive, alg.KeySize)
	}

	return fmt.Sprintf("%s (%s)", name, alg.Primitive)
}

func describeMaterial(m RelatedCryptoMaterial) string {
	if m.State == "" {
		return m.Type
	}

	return fmt.Sprintf("%s, state %s", m.Type, m.State)
}

func describeProtocol(p *ProtocolProperties) string {
	if p.Version == "" {
		return p.Type
	}

	return p.Type + " " + p.Version
}
