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
	"errors"
	"fmt"
	"time"
)

// AssetType classifies a cryptographic component.
type AssetType string

const (
	AssetTypeAlgorithm             AssetType = "algorithm"
	AssetTypeCertificate           AssetType = "certificate"
	AssetTypeProtocol              AssetType = "protocol"
	AssetTypeRelatedCryptoMaterial AssetType = "related-crypto-material"
	AssetTypeKey                   AssetType = "key"
	AssetTypeToken                 AssetType = "token"
)

// CryptoProperties is a tagged union: the asset type selects which one of
// the property sets is populated. Values are built through the asset
// constructors, so a half populated union cannot be constructed.
type CryptoProperties struct {
	assetType  AssetType
	algorithms []AlgorithmProperties
	cert       *CertificateProperties
	material   []RelatedCryptoMaterial
	protocol   *ProtocolProperties
}

// AlgorithmAsset builds crypto properties for a component backed by one or
// more algorithms.
func AlgorithmAsset(algorithms ...AlgorithmProperties) *CryptoProperties {
	return &CryptoProperties{
		assetType:  AssetTypeAlgorithm,
		algorithms: algorithms,
	}
}

// CertificateAsset builds crypto properties for certificate material.
func CertificateAsset(cert CertificateProperties) *CryptoProperties {
	return &CryptoProperties{
		assetType: AssetTypeCertificate,
		cert:      &cert,
	}
}

// KeyAsset builds crypto properties for key material.
func KeyAsset(material ...RelatedCryptoMaterial) *CryptoProperties {
	return &CryptoProperties{
		assetType: AssetTypeKey,
		material:  material,
	}
}

// ProtocolAsset builds crypto properties for a cryptographic protocol.
func ProtocolAsset(protocol ProtocolProperties) *CryptoProperties {
	return &CryptoProperties{
		assetType: AssetTypeProtocol,
		protocol:  &protocol,
	}
}

// AssetType returns the union's tag.
func (p *CryptoProperties) AssetType() AssetType {
	return p.assetType
}

// Algorithms returns the algorithm entries of an algorithm asset, nil for
// every other asset type.
func (p *CryptoProperties) Algorithms() []AlgorithmProperties {
	return p.algorithms
}

// Certificate returns the certificate details of a certificate asset, nil
// for every other asset type.
func (p *CryptoProperties) Certificate() *CertificateProperties {
	return p.cert
}

// Material returns the related crypto material of a key asset, nil for every
// other asset type.
func (p *CryptoProperties) Material() []RelatedCryptoMaterial {
	return p.material
}

// Protocol returns the protocol details of a protocol asset, nil for every
// other asset type.
func (p *CryptoProperties) Protocol() *ProtocolProperties {
	return p.protocol
}

type cryptoPropertiesJSON struct {
	AssetType  AssetType               `json:"assetType"`
	Algorithms []AlgorithmProperties   `json:"algorithmProperties,omitempty"`
	Cert       *CertificateProperties  `json:"certificateProperties,omitempty"`
	Material   []RelatedCryptoMaterial `json:"relatedCryptoMaterialProperties,omitempty"`
	Protocol   *ProtocolProperties     `json:"protocolProperties,omitempty"`
}

func (p *CryptoProperties) MarshalJSON() ([]byte, error) {
	return json.Marshal(cryptoPropertiesJSON{
		AssetType:  p.assetType,
		Algorithms: p.algorithms,
		Cert:       p.cert,
		Material:   p.material,
		Protocol:   p.protocol,
	})
}

func (p *CryptoProperties) UnmarshalJSON(data []byte) error {
	raw := cryptoPropertiesJSON{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.AssetType == "" {
		return errors.New("cryptoProperties requires an assetType")
	}

	populated := 0
	if len(raw.Algorithms) > 0 {
		populated++
	}
	if raw.Cert != nil {
		populated++
	}
	if len(raw.Material) > 0 {
		populated++
	}
	if raw.Protocol != nil {
		populated++
	}

	if populated > 1 {
		return fmt.Errorf("cryptoProperties for asset type %s carries more than one property set", raw.AssetType)
	}

	switch raw.AssetType {
	case AssetTypeAlgorithm:
		if len(raw.Algorithms) == 0 {
			return fmt.Errorf("asset type %s requires algorithmProperties", raw.AssetType)
		}
	case AssetTypeCertificate:
		if raw.Cert == nil {
			return fmt.Errorf("asset type %s requires certificateProperties", raw.AssetType)
		}
	case AssetTypeKey, AssetTypeRelatedCryptoMaterial:
		if len(raw.Material) == 0 {
			return fmt.Errorf("asset type %s requires relatedCryptoMaterialProperties", raw.AssetType)
		}
	case AssetTypeProtocol:
		if raw.Protocol == nil {
			return fmt.Errorf("asset type %s requires protocolProperties", raw.AssetType)
		}
	case AssetTypeToken:
		if populated != 0 {
			return fmt.Errorf("asset type %s carries no property set", raw.AssetType)
		}
	default:
		return fmt.Errorf("unsupported asset type: %s", raw.AssetType)
	}

	p.assetType = raw.AssetType
	p.algorithms = raw.Algorithms
	p.cert = raw.Cert
	p.material = raw.Material
	p.protocol = raw.Protocol
	return nil
}

// AlgorithmProperties describes one algorithm a component provides. Entries
// come from a fixed inference table keyed on library names, so the numbers
// are assumptions about default configurations, not measurements.
type AlgorithmProperties struct {
	// Name labels the algorithm and parameter set, for example "AES-256".
	// For unrecognized libraries it carries the literal library name.
	Name      string `json:"name,omitempty"`
	Primitive string `json:"primitive"`
	KeySize   int    `json:"keySize,omitempty"`
	// ExecutionEnvironment and ImplementationPlatform describe where the
	// algorithm is assumed to run.
	ExecutionEnvironment     string   `json:"executionEnvironment,omitempty"`
	ImplementationPlatform   string   `json:"implementationPlatform,omitempty"`
	CertificationLevel       []string `json:"certificationLevel,omitempty"`
	CryptoFunctions          []string `json:"cryptoFunctions,omitempty"`
	ClassicalSecurityLevel   int      `json:"classicalSecurityLevel,omitempty"`
	NISTQuantumSecurityLevel int      `json:"nistQuantumSecurityLevel,omitempty"`
}

// CertificateProperties describes certificate material carried as a file.
// Only the format is populated by static scanning; the parsed fields are
// reserved for consumers that open the certificate.
type CertificateProperties struct {
	SubjectName                  string     `json:"subjectName,omitempty"`
	IssuerName                   string     `json:"issuerName,omitempty"`
	NotValidBefore               *time.Time `json:"notValidBefore,omitempty"`
	NotValidAfter                *time.Time `json:"notValidAfter,omitempty"`
	SignatureAlgorithmRef        string     `json:"signatureAlgorithmRef,omitempty"`
	SubjectPublicKeyAlgorithmRef string     `json:"subjectPublicKeyAlgorithmRef,omitempty"`
	CertificateFormat            string     `json:"certificateFormat,omitempty"`
}

// RelatedCryptoMaterial describes key material associated with a component.
type RelatedCryptoMaterial struct {
	// Type is the material kind, for example "private-key".
	Type string `json:"type"`
	// ID references the bomRef of the component carrying the material.
	ID        string `json:"id,omitempty"`
	State     string `json:"state,omitempty"`
	Size      int    `json:"size,omitempty"`
	Format    string `json:"format,omitempty"`
	SecuredBy string `json:"securedBy,omitempty"`
}

// ProtocolProperties describes a cryptographic protocol such as TLS.
type ProtocolProperties struct {
	Type         string        `json:"type"`
	Version      string        `json:"version,omitempty"`
	CipherSuites []CipherSuite `json:"cipherSuites,omitempty"`
}

// CipherSuite names one suite a protocol offers.
type CipherSuite struct {
	Name        string   `json:"name"`
	Algorithms  []string `json:"algorithms,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
}
