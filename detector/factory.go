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

// Package detector defines the Finding model, the Detector interface, and the
// registry detectors announce themselves to at init time.
package detector

import (
	"fmt"

	"github.com/Link2Trust/crypscan/classify"
	"github.com/Link2Trust/crypscan/registry"
)

var detectorRegistry = registry.New[Detector]()

// Detector is one pattern detection family. Implementations must be safe to
// run concurrently against different Targets: Detect may not share mutable
// state across calls.
type Detector interface {
	// Name is the registry name of the detector, usable in configuration.
	Name() string
	// Category is the finding category the detector produces.
	Category() Category
	// Applies reports whether the detector should run against a file with
	// the given classification.
	Applies(classify.Result) bool
	// Detect scans the target and returns its findings in file-scan order.
	Detect(t *Target) ([]Finding, error)
}

type ErrDetectorNotFound string

func (e ErrDetectorNotFound) Error() string {
	return fmt.Sprintf("detector not found: %v", string(e))
}

// RegisterDetector adds a detector factory to the registry along with the
// configuration options it exposes.
func RegisterDetector(name string, factoryFunc registry.FactoryFunc[Detector], opts ...registry.Configurer) {
	detectorRegistry.Register(name, factoryFunc, opts...)
}

// RegistrationEntries returns the registry entries for every registered
// detector, so callers like the CLI can surface their options.
func RegistrationEntries() []registry.Entry[Detector] {
	return detectorRegistry.AllEntries()
}

// NewDetector creates the named detector with default option values applied,
// then runs any provided setters.
func NewDetector(name string, optSetters ...func(Detector) (Detector, error)) (Detector, error) {
	if _, ok := detectorRegistry.Entry(name); !ok {
		return nil, ErrDetectorNotFound(name)
	}

	return detectorRegistry.NewEntity(name, optSetters...)
}

// NewDetectorFromConfigMap creates the named detector with options taken from
// a config map keyed by option name.
func NewDetectorFromConfigMap(name string, configMap map[string]any) (Detector, error) {
	if _, ok := detectorRegistry.Entry(name); !ok {
		return nil, ErrDetectorNotFound(name)
	}

	return detectorRegistry.NewEntityFromConfigMap(name, configMap)
}

// Detectors instantiates each named detector with its defaults.
func Detectors(names []string) ([]Detector, error) {
	detectors := make([]Detector, 0, len(names))
	for _, name := range names {
		detector, err := NewDetector(name)
		if err != nil {
			return nil, err
		}

		detectors = append(detectors, detector)
	}

	return detectors, nil
}
