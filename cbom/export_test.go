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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) *Document {
	t.Helper()

	doc, err := NewGenerator(WithTargetName("inventory-api")).Generate([]detector.Finding{
		libraryFinding("src/tls.py", "openssl", "1.0.2"),
		keystoreFinding("certs/server.pem", "pem", "PEM file"),
		secretFinding("src/config.py", 12),
	})
	require.NoError(t, err)

	return doc
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, sampleDocument(t)))

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "CycloneDX", decoded["bomFormat"])
	assert.Equal(t, "1.6", decoded["specVersion"])
	assert.Contains(t, buf.String(), `"riskAssessments"`)
}

func TestExportXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXML(&buf, sampleDocument(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "<cbom>")
	assert.Contains(t, out, "<!-- JSON representation: -->")
	assert.Contains(t, out, `"specVersion": "1.6"`)
	assert.True(t, strings.HasSuffix(out, "</cbom>"))
}

func TestExportCycloneDXRoundTrip(t *testing.T) {
	doc := sampleDocument(t)

	var buf bytes.Buffer
	require.NoError(t, ExportCycloneDX(&buf, doc, FormatJSON))

	bom := cdx.NewBOM()
	require.NoError(t, cdx.NewBOMDecoder(&buf, cdx.BOMFileFormatJSON).Decode(bom))

	assert.Equal(t, doc.SerialNumber, bom.SerialNumber)
	require.NotNil(t, bom.Metadata)
	require.NotNil(t, bom.Metadata.Component)
	assert.Equal(t, "inventory-api", bom.Metadata.Component.Name)

	require.NotNil(t, bom.Components)
	require.Len(t, *bom.Components, 2)

	lib := (*bom.Components)[0]
	assert.Equal(t, cdx.ComponentTypeLibrary, lib.Type)
	assert.Equal(t, "crypto-lib-openssl-1-0-2", lib.BOMRef)
	require.NotNil(t, lib.Properties)

	values := map[string][]string{}
	for _, p := range *lib.Properties {
		values[p.Name] = append(values[p.Name], p.Value)
	}
	assert.Equal(t, []string{"algorithm"}, values["crypscan:assetType"])
	require.Len(t, values["crypscan:algorithm"], 2)
	assert.Contains(t, values["crypscan:algorithm"], "AES-256 (symmetric-encryption, 256 bit)")
	assert.Contains(t, values["crypscan:algorithm"], "RSA-2048 (digital-signature, 2048 bit)")

	store := (*bom.Components)[1]
	assert.Equal(t, cdx.ComponentTypeFile, store.Type)
	require.NotNil(t, store.Properties)
	assert.Equal(t, "crypscan:certificateFormat", (*store.Properties)[1].Name)
	assert.Equal(t, "X.509", (*store.Properties)[1].Value)

	require.NotNil(t, bom.Metadata.Properties)
	risks := *bom.Metadata.Properties
	require.Len(t, risks, 1)
	assert.Equal(t, "crypscan:risk:secrets", risks[0].Name)
	assert.Equal(t, "medium: Found 1 hardcoded secrets in codebase", risks[0].Value)
}

func TestExportCycloneDXXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCycloneDX(&buf, sampleDocument(t), FormatXML))

	out := buf.String()
	assert.Contains(t, out, "<?xml")
	assert.Contains(t, out, "<bom")
	assert.Contains(t, out, "serialNumber")
}

func TestExportCycloneDXUnsupportedFormat(t *testing.T) {
	err := ExportCycloneDX(&bytes.Buffer{}, sampleDocument(t), "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cyclonedx format")
}
