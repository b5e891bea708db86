package emit

import (
	"encoding/json"
	"fmt"

	"normscan/internal/rule"
)

// cliDescriptor lists every rule ID together with the operations a rule CLI
// exposes over them.
type cliDescriptor struct {
	Version    string         `json:"version"`
	RuleCount  int            `json:"rule_count"`
	RuleIDs    []string       `json:"rule_ids"`
	Operations []cliOperation `json:"operations"`
}

type cliOperation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}

// CLIEmitter emits the command-line entry descriptor.
type CLIEmitter struct{}

func (e *CLIEmitter) Name() string { return CLIName }

func (e *CLIEmitter) Emit(set *rule.Set) (Artifact, error) {
	desc := cliDescriptor{
		Version:   "v1",
		RuleCount: len(set.Rules),
		RuleIDs:   set.IDs(),
		Operations: []cliOperation{
			{Name: "list", Description: "List all rule IDs with priority and category.", Usage: "rules list"},
			{Name: "validate-one", Description: "Run the check for a single rule ID.", Usage: "rules validate-one <rule-id>"},
			{Name: "validate-all", Description: "Run every check and report failures.", Usage: "rules validate-all"},
			{Name: "scorecard", Description: "Print pass/fail counts grouped by priority.", Usage: "rules scorecard"},
		},
	}
	if desc.RuleIDs == nil {
		desc.RuleIDs = []string{}
	}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("marshal cli descriptor: %w", err)
	}
	return Artifact{Name: CLIName, Data: append(data, '\n')}, nil
}
