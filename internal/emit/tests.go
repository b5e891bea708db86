package emit

import (
	"fmt"
	"strings"

	"normscan/internal/rule"
)

// TestsEmitter generates the test-suite artifact: a Go test file with one
// case per rule, parametrized over the full rule ID list. Each case asserts
// the check function exists, passes on a positive fixture and fails on a
// negative one.
type TestsEmitter struct{}

func (e *TestsEmitter) Name() string { return TestsName }

func (e *TestsEmitter) Emit(set *rule.Set) (Artifact, error) {
	var b strings.Builder

	b.WriteString("// Code generated by normscan. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", GeneratedPackage)
	b.WriteString("import \"testing\"\n\n")

	b.WriteString("// allRuleIDs is the full rule ID list this suite covers.\nvar allRuleIDs = []string{\n")
	for _, r := range set.Rules {
		fmt.Fprintf(&b, "\t%q,\n", r.ID)
	}
	b.WriteString("}\n\n")

	b.WriteString(`func TestChecksCoverAllRules(t *testing.T) {
	if len(Checks) != len(allRuleIDs) {
		t.Fatalf("validator covers %d rules, suite expects %d", len(Checks), len(allRuleIDs))
	}
	if RuleCount != len(allRuleIDs) {
		t.Fatalf("RuleCount = %d, suite expects %d", RuleCount, len(allRuleIDs))
	}
}

func TestEachRule(t *testing.T) {
	for _, id := range allRuleIDs {
		t.Run(id, func(t *testing.T) {
			check, ok := Checks[id]
			if !ok {
				t.Fatalf("no check registered for %s", id)
			}

			positive := check(map[string]bool{id: true})
			if !positive.Passed {
				t.Errorf("positive fixture failed: %s", positive.Message)
			}
			if positive.RuleID != id {
				t.Errorf("check reported rule %s, want %s", positive.RuleID, id)
			}

			negative := check(map[string]bool{})
			if negative.Passed {
				t.Errorf("negative fixture passed unexpectedly")
			}
			if negative.Message == "" {
				t.Errorf("negative result carries no message")
			}
		})
	}
}
`)

	return Artifact{Name: TestsName, Data: []byte(b.String())}, nil
}
