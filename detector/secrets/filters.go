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

package secrets

import (
	"regexp"
	"strings"
)

// Placeholder matching modes. Prefix mode rejects a candidate only when it
// starts with a placeholder token; contains mode rejects when the token
// appears anywhere in the candidate, which is far more aggressive and can
// suppress real secrets containing words like "key".
const (
	PlaceholderModePrefix   = "prefix"
	PlaceholderModeContains = "contains"
)

var placeholderPrefixes = []string{
	"your_", "my_", "example_", "test_", "dummy_", "fake_", "placeholder_", "sample_",
	"replace_", "todo_", "fixme_", "xxx", "yyy", "zzz",
}

var exactPlaceholders = []string{
	"your_key", "your_secret", "your_token", "replace_me",
	"example", "test", "dummy", "fake", "placeholder", "sample",
	"todo", "fixme", "lorem", "ipsum", "password", "secret", "key",
	"12345", "abcde", "qwerty",
}

// docKeywordPatterns match documentation-ish words on a line. Word boundaries
// keep tokens embedded in larger identifiers or key material, such as the
// trailing EXAMPLE in AWS documentation key IDs, from suppressing a finding.
var docKeywordPatterns = compileDocKeywords("example", "documentation", "readme", "demo", "tutorial")

func compileDocKeywords(words ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		patterns = append(patterns, regexp.MustCompile(`\b`+word+`\b`))
	}
	return patterns
}

// isCommentLine reports whether a line starts with common single-line or
// block comment syntax. Comment lines are skipped entirely, trading missed
// secrets inside comments for fewer false positives.
func isCommentLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "<!--") ||
		strings.HasPrefix(trimmed, `"""`) ||
		strings.HasPrefix(trimmed, "'''")
}

// isLikelyFalsePositive reports whether a matched candidate value looks like
// placeholder or documentation noise rather than a real credential. The
// checks run in a fixed order and any single one suppresses the finding:
// placeholder tokens against the value, documentation keywords against the
// whole line, then the minimum length floor.
func isLikelyFalsePositive(line, value, placeholderMode string, minLength int) bool {
	lineLower := strings.ToLower(line)
	valueLower := strings.ToLower(value)
	contains := placeholderMode == PlaceholderModeContains

	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(valueLower, prefix) {
			return true
		}
		if contains && strings.Contains(valueLower, prefix) {
			return true
		}
	}

	for _, placeholder := range exactPlaceholders {
		if valueLower == placeholder {
			return true
		}
		if contains && strings.Contains(valueLower, placeholder) {
			return true
		}
	}

	for _, pattern := range docKeywordPatterns {
		if pattern.MatchString(lineLower) {
			return true
		}
	}

	return len(value) < minLength
}
