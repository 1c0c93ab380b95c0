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

package classify

import (
	"path/filepath"
	"strings"
)

var languagesByExtension = map[string]string{
	"rs":         "Rust",
	"py":         "Python",
	"pyw":        "Python",
	"pyi":        "Python",
	"java":       "Java",
	"class":      "Java",
	"js":         "JavaScript",
	"mjs":        "JavaScript",
	"cjs":        "JavaScript",
	"ts":         "TypeScript",
	"tsx":        "TypeScript",
	"jsx":        "JSX",
	"cpp":        "C++",
	"cc":         "C++",
	"cxx":        "C++",
	"c++":        "C++",
	"hpp":        "C++",
	"hxx":        "C++",
	"hh":         "C++",
	"c":          "C",
	"h":          "C",
	"cs":         "C#",
	"go":         "Go",
	"php":        "PHP",
	"php3":       "PHP",
	"php4":       "PHP",
	"php5":       "PHP",
	"phtml":      "PHP",
	"rb":         "Ruby",
	"rbw":        "Ruby",
	"kt":         "Kotlin",
	"kts":        "Kotlin",
	"swift":      "Swift",
	"scala":      "Scala",
	"sc":         "Scala",
	"pl":         "Perl",
	"pm":         "Perl",
	"t":          "Perl",
	"sh":         "Shell",
	"bash":       "Shell",
	"zsh":        "Shell",
	"fish":       "Shell",
	"ps1":        "PowerShell",
	"psm1":       "PowerShell",
	"psd1":       "PowerShell",
	"cmd":        "Batch",
	"bat":        "Batch",
	"yaml":       "YAML",
	"yml":        "YAML",
	"json":       "JSON",
	"toml":       "TOML",
	"xml":        "XML",
	"xsd":        "XML",
	"xsl":        "XML",
	"html":       "HTML",
	"htm":        "HTML",
	"css":        "CSS",
	"scss":       "CSS",
	"sass":       "CSS",
	"less":       "CSS",
	"sql":        "SQL",
	"dockerfile": "Dockerfile",
	"env":        "Environment",
	"ini":        "Configuration",
	"cfg":        "Configuration",
	"conf":       "Configuration",
	"config":     "Configuration",
	"md":         "Markdown",
	"markdown":   "Markdown",
	"tex":        "LaTeX",
	"r":          "R",
	"m":          "Objective-C",
	"mm":         "Objective-C++",
	"dart":       "Dart",
	"lua":        "Lua",
	"vim":        "Vim Script",
	"asm":        "Assembly",
	"s":          "Assembly",
}

var languagesByBasename = map[string]string{
	"dockerfile":        "Dockerfile",
	"dockerfile.dev":    "Dockerfile",
	"dockerfile.prod":   "Dockerfile",
	"makefile":          "Makefile",
	"gnumakefile":       "Makefile",
	"rakefile":          "Ruby",
	"gemfile":           "Ruby",
	"gemfile.lock":      "Ruby",
	"package.json":      "JSON",
	"package-lock.json": "JSON",
	"cargo.toml":        "TOML",
	"cargo.lock":        "TOML",
	"go.mod":            "Go Module",
	"go.sum":            "Go Module",
	"requirements.txt":  "Python",
	"setup.py":          "Python",
	"pyproject.toml":    "Python",
	"pom.xml":           "Build Script",
	"build.gradle":      "Build Script",
	".env":              "Environment",
	".env.local":        "Environment",
	".env.development":  "Environment",
	".env.production":   "Environment",
	".env.test":         "Environment",
}

// Language identifies the likely source language of a file from its name.
// Well known file names win over plain extension lookup so manifests like
// go.mod or Makefile identify correctly. Returns "Unknown" when neither
// matches.
func Language(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := languagesByBasename[base]; ok {
		return lang
	}

	if lang, ok := languagesByExtension[Extension(path)]; ok {
		return lang
	}

	return "Unknown"
}
