package emit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"normscan/internal/rule"
)

// Enforcement classes, selected by priority.
const (
	ClauseHardFail = "hard_fail"
	ClauseWarn     = "warn"
	ClauseInfo     = "info"
)

type policyDoc struct {
	Version   string         `yaml:"version"`
	RuleCount int            `yaml:"rule_count"`
	HardFail  []policyClause `yaml:"hard_fail"`
	Warn      []policyClause `yaml:"warn"`
	Info      []policyClause `yaml:"info"`
}

type policyClause struct {
	RuleID  string `yaml:"rule_id"`
	Clause  string `yaml:"clause"`
	Message string `yaml:"message"`
}

// PolicyEmitter emits one enforcement clause per rule, grouped into the
// three enforcement classes.
type PolicyEmitter struct{}

func (e *PolicyEmitter) Name() string { return PolicyName }

func (e *PolicyEmitter) Emit(set *rule.Set) (Artifact, error) {
	doc := policyDoc{
		Version:   "v1",
		RuleCount: len(set.Rules),
		HardFail:  []policyClause{},
		Warn:      []policyClause{},
		Info:      []policyClause{},
	}
	for _, r := range set.Rules {
		c := policyClause{
			RuleID:  r.ID,
			Clause:  ClauseFor(r.Priority),
			Message: fmt.Sprintf("[%s] %s", r.Priority, r.Description),
		}
		switch c.Clause {
		case ClauseHardFail:
			doc.HardFail = append(doc.HardFail, c)
		case ClauseWarn:
			doc.Warn = append(doc.Warn, c)
		default:
			doc.Info = append(doc.Info, c)
		}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("marshal policy: %w", err)
	}
	return Artifact{Name: PolicyName, Data: data}, nil
}

// ClauseFor maps a priority to its enforcement class.
func ClauseFor(p rule.Priority) string {
	switch p {
	case rule.PriorityMust:
		return ClauseHardFail
	case rule.PriorityShould:
		return ClauseWarn
	default:
		return ClauseInfo
	}
}
