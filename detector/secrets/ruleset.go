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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Link2Trust/crypscan/log"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
)

// loadRuleset reads a gitleaks TOML configuration file and converts its rules
// into the detector's rule format. A loaded ruleset replaces the builtin
// table entirely. Rules are ordered by ID so scan output stays deterministic
// regardless of map iteration order.
func loadRuleset(path string) ([]rule, error) {
	log.Debugf("(detector/secrets) loading gitleaks ruleset from: %s", path)

	// A fresh Viper instance avoids interfering with global CLI state.
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("gitleaks ruleset not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("error reading gitleaks ruleset %s: %w", path, err)
	}

	var viperConfig config.ViperConfig
	if err := v.Unmarshal(&viperConfig); err != nil {
		return nil, fmt.Errorf("error unmarshaling gitleaks ruleset %s: %w", path, err)
	}

	cfg, err := viperConfig.Translate()
	if err != nil {
		return nil, fmt.Errorf("error translating gitleaks ruleset %s: %w", path, err)
	}

	ids := make([]string, 0, len(cfg.Rules))
	for id := range cfg.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]rule, 0, len(ids))
	for _, id := range ids {
		glRule := cfg.Rules[id]
		if glRule.Regex == nil {
			log.Warnf("(detector/secrets) skipping gitleaks rule %s: no regex", id)
			continue
		}

		description := glRule.Description
		if description == "" {
			description = id
		}

		rules = append(rules, rule{
			keyword:     id,
			description: description,
			severity:    severityForRuleID(id),
			group:       glRule.SecretGroup,
			re:          glRule.Regex,
		})
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("gitleaks ruleset %s contains no usable rules", path)
	}

	log.Infof("(detector/secrets) loaded %d secret rules from %s", len(rules), path)
	return rules, nil
}

// severityForRuleID maps a gitleaks rule ID onto the 1-3 scale used by the
// builtin table. Gitleaks rules carry no severity of their own, so rule IDs
// naming well-known credential material weigh in at 3 and everything else
// at 2.
func severityForRuleID(id string) int {
	highSeverityMarkers := []string{
		"aws", "gcp", "azure", "api", "token", "key", "credential", "password",
		"secret", "private", "auth", "ssh", "cert", "jwt",
	}

	idLower := strings.ToLower(id)
	for _, marker := range highSeverityMarkers {
		if strings.Contains(idLower, marker) {
			return 3
		}
	}

	return 2
}
