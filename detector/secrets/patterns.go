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

import "regexp"

// rule is a single credential shape the detector matches lines against.
// keyword is the canonical secret type reported on findings, description is
// the human-readable context, and severity is a 1-3 weight consumed by
// downstream risk aggregation. group selects the capture group holding the
// candidate secret value; 0 selects it automatically (see extract).
type rule struct {
	keyword     string
	description string
	severity    int
	group       int
	re          *regexp.Regexp
}

// extract returns the candidate secret value for a submatch slice produced by
// this rule. An explicit group index wins; otherwise the value is taken from
// group 2 if the pattern has two or more groups, else group 1, else the whole
// match. Patterns are written so the interesting substring is the innermost
// group. Non-participating groups yield an empty string, which the length
// floor later rejects.
func (r rule) extract(match []string) string {
	if r.group > 0 && r.group < len(match) {
		return match[r.group]
	}

	switch n := r.re.NumSubexp(); {
	case n >= 2:
		return match[2]
	case n == 1:
		return match[1]
	default:
		return match[0]
	}
}

// builtinRules is the default credential pattern table, covering generic
// key/value assignments, well-known provider token formats, connection
// strings with embedded credentials, JWT-shaped triples, PEM private key
// headers, and JSON key-material fields.
var builtinRules = []rule{
	{"API Key", "Generic API key pattern", 3, 0,
		regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]([a-zA-Z0-9_\-]{20,})['"]`)},
	{"Secret Key", "Generic secret key pattern", 3, 0,
		regexp.MustCompile(`(?i)(secret[_-]?key|secretkey)\s*[:=]\s*['"]([a-zA-Z0-9_\-]{20,})['"]`)},
	{"Access Token", "Generic access token pattern", 3, 0,
		regexp.MustCompile(`(?i)(access[_-]?token|accesstoken)\s*[:=]\s*['"]([a-zA-Z0-9_.\-]{20,})['"]`)},
	{"Auth Token", "Generic authentication token", 3, 0,
		regexp.MustCompile(`(?i)(auth[_-]?token|authtoken)\s*[:=]\s*['"]([a-zA-Z0-9_.\-]{20,})['"]`)},
	{"Password", "Hardcoded password", 3, 0,
		regexp.MustCompile(`(?i)password\s*[:=]\s*['"]([^'"]{8,})['"]`)},
	{"Password", "Hardcoded passwd", 3, 0,
		regexp.MustCompile(`(?i)passwd\s*[:=]\s*['"]([^'"]{8,})['"]`)},

	{"AWS Access Key", "AWS Access Key ID", 3, 0,
		regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"AWS Secret", "AWS Secret Access Key", 3, 0,
		regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*['"]([a-zA-Z0-9/+=]{40})['"]`)},

	{"GitHub Token", "GitHub Personal Access Token", 3, 0,
		regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`)},
	{"GitHub Token", "GitHub OAuth Access Token", 3, 0,
		regexp.MustCompile(`gho_[a-zA-Z0-9]{36}`)},
	{"GitHub Token", "GitHub User Access Token", 3, 0,
		regexp.MustCompile(`ghu_[a-zA-Z0-9]{36}`)},
	{"GitHub Token", "GitHub Server Access Token", 3, 0,
		regexp.MustCompile(`ghs_[a-zA-Z0-9]{36}`)},
	{"GitHub Token", "GitHub Refresh Token", 3, 0,
		regexp.MustCompile(`ghr_[a-zA-Z0-9]{36}`)},

	{"Google API Key", "Google API Key", 3, 0,
		regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)},

	{"Slack Token", "Slack API Token", 2, 0,
		regexp.MustCompile(`xox[baprs]-([0-9a-zA-Z]{10,48})`)},

	{"Discord Token", "Discord Bot Token", 2, 0,
		regexp.MustCompile(`[MN][A-Za-z\d]{23}\.[\w-]{6}\.[\w-]{27}`)},

	{"Azure Secret", "Azure client secret assignment", 3, 0,
		regexp.MustCompile(`(?i)azure[_-]?(?:client[_-]?)?secret\s*[:=]\s*['"]([a-zA-Z0-9~._\-]{20,})['"]`)},
	{"Heroku API Key", "Heroku API key in UUID format", 2, 0,
		regexp.MustCompile(`(?i)heroku[_-]?api[_-]?key\s*[:=]\s*['"]([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})['"]`)},
	{"Twilio API Key", "Twilio API key SID", 2, 0,
		regexp.MustCompile(`SK[0-9a-fA-F]{32}`)},
	{"SendGrid API Key", "SendGrid API key", 3, 0,
		regexp.MustCompile(`SG\.[A-Za-z0-9_\-]{22}\.[A-Za-z0-9_\-]{43}`)},
	{"Facebook Token", "Facebook access token", 2, 0,
		regexp.MustCompile(`EAACEdEose0cBA[0-9A-Za-z]+`)},
	{"Mailgun API Key", "Mailgun API key", 2, 0,
		regexp.MustCompile(`key-[0-9a-zA-Z]{32}`)},

	{"MongoDB URI", "MongoDB connection string with credentials", 3, 0,
		regexp.MustCompile(`(?i)mongodb://[^:]+:[^@]+@[^/]+`)},
	{"MySQL URI", "MySQL connection string with credentials", 3, 0,
		regexp.MustCompile(`(?i)mysql://[^:]+:[^@]+@[^/]+`)},
	{"PostgreSQL URI", "PostgreSQL connection string with credentials", 3, 0,
		regexp.MustCompile(`(?i)postgresql://[^:]+:[^@]+@[^/]+`)},

	{"JWT Token", "JSON Web Token", 2, 0,
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`)},

	{"Private Key", "RSA/Generic Private Key", 3, 0,
		regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+)?PRIVATE KEY-----`)},
	{"SSH Private Key", "OpenSSH Private Key", 3, 0,
		regexp.MustCompile(`-----BEGIN\s+OPENSSH\s+PRIVATE KEY-----`)},
	{"EC Private Key", "Elliptic Curve Private Key", 3, 0,
		regexp.MustCompile(`-----BEGIN\s+EC\s+PRIVATE KEY-----`)},
	{"DSA Private Key", "DSA Private Key", 3, 0,
		regexp.MustCompile(`-----BEGIN\s+DSA\s+PRIVATE KEY-----`)},

	{"Private Key Field", "JSON private key field", 3, 0,
		regexp.MustCompile(`(?i)"[a-z0-9_]*private_key"\s*:\s*"([^"]+)"`)},
	{"Public Key Field", "JSON public key field", 1, 0,
		regexp.MustCompile(`(?i)"[a-z0-9_]*public_key"\s*:\s*"([^"]+)"`)},
}
