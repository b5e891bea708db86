package emit

import (
	"fmt"
	"strings"

	"normscan/internal/rule"
)

// ValidatorEmitter generates the procedural validator: a Go source file with
// one check function per rule. A check passes when the attestation map marks
// its rule as satisfied; the function always reports (rule_id, passed,
// message).
type ValidatorEmitter struct{}

func (e *ValidatorEmitter) Name() string { return ValidatorName }

func (e *ValidatorEmitter) Emit(set *rule.Set) (Artifact, error) {
	var b strings.Builder

	b.WriteString("// Code generated by normscan. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", GeneratedPackage)
	b.WriteString(`// CheckResult is the outcome of validating one rule.
type CheckResult struct {
	RuleID  string
	Passed  bool
	Message string
}

// CheckFunc validates one rule against an attestation map.
type CheckFunc func(attestations map[string]bool) CheckResult

`)

	fmt.Fprintf(&b, "// RuleCount is the number of rules this validator covers.\nconst RuleCount = %d\n\n", len(set.Rules))

	b.WriteString("// Checks maps every rule ID to its check function.\nvar Checks = map[string]CheckFunc{\n")
	for _, r := range set.Rules {
		fmt.Fprintf(&b, "\t%q: %s,\n", r.ID, checkFuncName(r.ID))
	}
	b.WriteString("}\n\n")

	b.WriteString(`// ValidateAll runs every check. Map iteration order is not deterministic;
// callers who need ordered results should iterate the contract artifact's
// rule IDs and call Checks[id] directly.
func ValidateAll(attestations map[string]bool) []CheckResult {
	out := make([]CheckResult, 0, len(Checks))
	for _, check := range Checks {
		out = append(out, check(attestations))
	}
	return out
}

`)

	for _, r := range set.Rules {
		fmt.Fprintf(&b, "// %s: [%s] %s\nfunc %s(attestations map[string]bool) CheckResult {\n", r.ID, r.Priority, sanitizeComment(r.Description), checkFuncName(r.ID))
		fmt.Fprintf(&b, "\tif attestations[%q] {\n", r.ID)
		fmt.Fprintf(&b, "\t\treturn CheckResult{RuleID: %q, Passed: true, Message: \"satisfied\"}\n", r.ID)
		b.WriteString("\t}\n")
		fmt.Fprintf(&b, "\treturn CheckResult{RuleID: %q, Passed: false, Message: %q}\n", r.ID, "not attested: "+r.Description)
		b.WriteString("}\n\n")
	}

	return Artifact{Name: ValidatorName, Data: []byte(b.String())}, nil
}

// checkFuncName derives a valid Go identifier from a rule ID.
func checkFuncName(id string) string {
	var b strings.Builder
	b.WriteString("check_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func sanitizeComment(s string) string {
	return strings.ReplaceAll(rule.Canonicalize(s), "\n", " ")
}
