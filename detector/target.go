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
	"os"
	"strings"

	"github.com/Link2Trust/crypscan/classify"
)

// Target is the per-file context handed to each detector. Content is read at
// most once and shared by every detector that runs against the file. A Target
// is only ever used by one goroutine.
type Target struct {
	// Path is the file path as it should appear in findings.
	Path string
	// Class is the file's eligibility classification.
	Class classify.Result
	// Language is the identified source language of the file.
	Language string

	content []byte
	lines   []string
	loaded  bool
	readErr error
}

// NewTarget builds a Target for path, classifying and identifying it.
func NewTarget(path string) *Target {
	return &Target{
		Path:     path,
		Class:    classify.Classify(path),
		Language: classify.Language(path),
	}
}

// Content returns the file's bytes, reading them on first use.
func (t *Target) Content() ([]byte, error) {
	if !t.loaded {
		t.content, t.readErr = os.ReadFile(t.Path)
		t.loaded = true
	}

	return t.content, t.readErr
}

// Lines returns the file's content split into lines. The split result is
// cached alongside the content.
func (t *Target) Lines() ([]string, error) {
	if t.lines != nil {
		return t.lines, nil
	}

	content, err := t.Content()
	if err != nil {
		return nil, err
	}

	t.lines = strings.Split(string(content), "\n")
	return t.lines, nil
}

// Size returns the file's size in bytes without reading its content.
func (t *Target) Size() (int64, error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
