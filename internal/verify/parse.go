package verify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"normscan/internal/emit"
)

var (
	checksEntryRe  = regexp.MustCompile(`^\s*"([^"]+)":\s*check_\w+,\s*$`)
	ruleIDEntryRe  = regexp.MustCompile(`^\s*"([^"]+)",\s*$`)
	allRuleIDsHead = "var allRuleIDs = []string{"
)

// ParseIDs re-derives the rule ID set from one artifact's raw bytes.
func ParseIDs(name string, data []byte) ([]string, error) {
	switch name {
	case emit.ContractName:
		return parseContractIDs(data)
	case emit.PolicyName:
		return parsePolicyIDs(data)
	case emit.ValidatorName:
		return parseValidatorIDs(data), nil
	case emit.TestsName:
		return parseTestsIDs(data), nil
	case emit.CLIName:
		return parseCLIIDs(data)
	}
	return nil, fmt.Errorf("unknown artifact %q", name)
}

func parseContractIDs(data []byte) ([]string, error) {
	var doc struct {
		Rules []struct {
			ID string `yaml:"id"`
		} `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func parsePolicyIDs(data []byte) ([]string, error) {
	var doc struct {
		HardFail []struct {
			RuleID string `yaml:"rule_id"`
		} `yaml:"hard_fail"`
		Warn []struct {
			RuleID string `yaml:"rule_id"`
		} `yaml:"warn"`
		Info []struct {
			RuleID string `yaml:"rule_id"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range doc.HardFail {
		ids = append(ids, c.RuleID)
	}
	for _, c := range doc.Warn {
		ids = append(ids, c.RuleID)
	}
	for _, c := range doc.Info {
		ids = append(ids, c.RuleID)
	}
	return ids, nil
}

// parseValidatorIDs scans the generated source for the Checks map entries.
func parseValidatorIDs(data []byte) []string {
	var ids []string
	inMap := false
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "var Checks = map[string]CheckFunc{") {
			inMap = true
			continue
		}
		if inMap {
			if strings.TrimSpace(line) == "}" {
				break
			}
			if m := checksEntryRe.FindStringSubmatch(line); m != nil {
				ids = append(ids, m[1])
			}
		}
	}
	return ids
}

// parseTestsIDs scans the generated test source for the allRuleIDs literal.
func parseTestsIDs(data []byte) []string {
	var ids []string
	inList := false
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, allRuleIDsHead) {
			inList = true
			continue
		}
		if inList {
			if strings.TrimSpace(line) == "}" {
				break
			}
			if m := ruleIDEntryRe.FindStringSubmatch(line); m != nil {
				ids = append(ids, m[1])
			}
		}
	}
	return ids
}

func parseCLIIDs(data []byte) ([]string, error) {
	var doc struct {
		RuleIDs []string `json:"rule_ids"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.RuleIDs, nil
}
