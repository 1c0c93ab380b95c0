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

// Command schemagen writes the JSON schemas of the findings report and the
// CBOM document, plus a reference of every registered detector and its
// configuration options.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/invopop/jsonschema"

	// import the root package so every detector registers itself
	_ "github.com/Link2Trust/crypscan"
	"github.com/Link2Trust/crypscan/cbom"
	"github.com/Link2Trust/crypscan/detector"
	"github.com/Link2Trust/crypscan/registry"
)

var directory string

func init() {
	flag.StringVar(&directory, "dir", "docs/schema", "Directory to store the generated schemas")
	flag.Parse()
}

func main() {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		log.Fatal("Error creating schema directory:", err)
	}

	writeSchema("findings", detector.FindingsSchema())
	writeSchema("cbom", cbom.DocumentSchema())
	writeDetectorReference()
}

func writeSchema(name string, schema *jsonschema.Schema) {
	schemaJson, err := schema.MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, schemaJson, "", "  "); err != nil {
		fmt.Println("Error marshalling JSON schema:", err)
		os.Exit(1)
	}

	log.Printf("Writing %s schema to %s/%s.json", name, directory, name)
	if err := os.WriteFile(fmt.Sprintf("%s/%s.json", directory, name), indented.Bytes(), 0644); err != nil {
		log.Fatal("Error writing to file:", err)
	}
}

type optionDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

type detectorDoc struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Options  []optionDoc `json:"options,omitempty"`
}

func writeDetectorReference() {
	entries := detector.RegistrationEntries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	docs := make([]detectorDoc, 0, len(entries))
	for _, entry := range entries {
		doc := detectorDoc{
			Name:     entry.Name,
			Category: string(entry.Factory().Category()),
		}

		for _, opt := range entry.Options {
			doc.Options = append(doc.Options, optionDoc{
				Name:        opt.Name(),
				Description: opt.Description(),
				Default:     optionDefault(opt),
			})
		}

		docs = append(docs, doc)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Writing detector reference to %s/detectors.json", directory)
	if err := os.WriteFile(fmt.Sprintf("%s/detectors.json", directory), data, 0644); err != nil {
		log.Fatal("Error writing to file:", err)
	}
}

func optionDefault(opt registry.Configurer) any {
	switch o := opt.(type) {
	case *registry.ConfigOption[detector.Detector, int]:
		return o.DefaultVal()
	case *registry.ConfigOption[detector.Detector, string]:
		return o.DefaultVal()
	case *registry.ConfigOption[detector.Detector, bool]:
		return o.DefaultVal()
	case *registry.ConfigOption[detector.Detector, []string]:
		return o.DefaultVal()
	case *registry.ConfigOption[detector.Detector, time.Duration]:
		return o.DefaultVal()
	default:
		return nil
	}
}
