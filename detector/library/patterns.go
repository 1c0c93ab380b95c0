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

package library

import (
	"regexp"
	"strings"
)

// pattern is one crypto library the detector knows how to spot. The table is
// fixed and compiled once at package load; a pattern that fails to compile is
// a programming error and stops the program immediately.
type pattern struct {
	// keyword is the raw text the rule was built from.
	keyword string
	// label is the library name reported in findings.
	label string
	// matchType is the import mechanism: import, require, or include.
	matchType string
	language  string
	// version is a known default version for ecosystems that pin one.
	version string
	re      *regexp.Regexp
}

var patterns = compilePatterns([]pattern{
	// Rust
	{keyword: "openssl", label: "openssl", matchType: "import", language: "Rust", version: "0.10"},
	{keyword: "ring", label: "ring", matchType: "import", language: "Rust"},
	{keyword: "rustls", label: "rustls", matchType: "import", language: "Rust"},
	{keyword: "secrecy", label: "secrecy", matchType: "import", language: "Rust"},

	// Python
	{keyword: "cryptography", label: "cryptography", matchType: "import", language: "Python"},
	{keyword: "pycrypto", label: "pycrypto", matchType: "import", language: "Python"},
	{keyword: "pycryptodome", label: "pycryptodome", matchType: "import", language: "Python"},
	{keyword: "ssl", label: "ssl", matchType: "import", language: "Python"},
	{keyword: "hashlib", label: "hashlib", matchType: "import", language: "Python"},
	{keyword: "jwt", label: "jwt", matchType: "import", language: "Python"},

	// Java
	{keyword: "javax.crypto", label: "javax.crypto", matchType: "import", language: "Java"},
	{keyword: "bouncycastle", label: "bouncycastle", matchType: "import", language: "Java"},
	{keyword: "java.security", label: "java.security", matchType: "import", language: "Java"},
	{keyword: "sun.security", label: "sun.security", matchType: "import", language: "Java"},

	// JavaScript / Node
	{keyword: "require('crypto')", label: "crypto", matchType: "require", language: "JavaScript"},
	{keyword: `require("crypto")`, label: "crypto", matchType: "require", language: "JavaScript"},
	{keyword: "require('jsonwebtoken')", label: "jsonwebtoken", matchType: "require", language: "JavaScript"},
	{keyword: `require("jsonwebtoken")`, label: "jsonwebtoken", matchType: "require", language: "JavaScript"},
	{keyword: "require('bcrypt')", label: "bcrypt", matchType: "require", language: "JavaScript"},
	{keyword: `require("argon2")`, label: "argon2", matchType: "require", language: "JavaScript"},
	{keyword: "require('node-forge')", label: "node-forge", matchType: "require", language: "JavaScript"},

	// Go
	{keyword: "crypto/", label: "crypto", matchType: "import", language: "Go"},
	{keyword: "golang.org/x/crypto", label: "golang.crypto", matchType: "import", language: "Go"},

	// C / C++
	{keyword: "#include <openssl", label: "openssl", matchType: "include", language: "C/C++"},
	{keyword: "#include <sodium.h>", label: "libsodium", matchType: "include", language: "C/C++"},
	{keyword: "#include <mbedtls", label: "mbedtls", matchType: "include", language: "C/C++"},
	{keyword: "#include <wolfssl", label: "wolfssl", matchType: "include", language: "C/C++"},
})

// compilePatterns builds the match regex for each table entry. Keywords that
// are code fragments (require calls, include directives, path prefixes) match
// literally; bare names get word boundaries so "ring" does not match "string".
func compilePatterns(specs []pattern) []pattern {
	compiled := make([]pattern, 0, len(specs))
	for _, spec := range specs {
		expr := regexp.QuoteMeta(spec.keyword)
		if !isLiteralKeyword(spec.keyword) {
			expr = `\b` + expr + `\b`
		}

		spec.re = regexp.MustCompile(expr)
		compiled = append(compiled, spec)
	}

	return compiled
}

func isLiteralKeyword(keyword string) bool {
	return strings.Contains(keyword, "require(") ||
		strings.HasPrefix(keyword, "#include") ||
		strings.Contains(keyword, "/")
}
