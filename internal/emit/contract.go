package emit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"normscan/internal/rule"
)

// contractDoc is the declarative rule contract: one entry per rule with full
// metadata, plus the count so the artifact describes itself.
type contractDoc struct {
	Version   string          `yaml:"version"`
	RuleCount int             `yaml:"rule_count"`
	Rules     []contractEntry `yaml:"rules"`
}

type contractEntry struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Priority    rule.Priority   `yaml:"priority"`
	Category    string          `yaml:"category"`
	Coordinate  rule.Coordinate `yaml:"source_coordinate"`
	ContentHash string          `yaml:"content_hash"`
	Confidence  float64         `yaml:"confidence"`
	MatcherIDs  []string        `yaml:"matcher_ids"`
}

// ContractEmitter serializes the declarative rule contract.
type ContractEmitter struct{}

func (e *ContractEmitter) Name() string { return ContractName }

func (e *ContractEmitter) Emit(set *rule.Set) (Artifact, error) {
	doc := contractDoc{
		Version:   "v1",
		RuleCount: len(set.Rules),
		Rules:     make([]contractEntry, 0, len(set.Rules)),
	}
	for _, r := range set.Rules {
		doc.Rules = append(doc.Rules, contractEntry{
			ID:          r.ID,
			Description: r.Description,
			Priority:    r.Priority,
			Category:    r.Category,
			Coordinate:  r.Coord,
			ContentHash: r.ContentHash,
			Confidence:  r.Confidence,
			MatcherIDs:  r.MatcherIDs,
		})
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("marshal contract: %w", err)
	}
	return Artifact{Name: ContractName, Data: data}, nil
}
