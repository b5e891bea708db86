package emit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"normscan/internal/rule"
)

func fixtureSet() *rule.Set {
	return &rule.Set{Rules: []rule.Rule{
		{
			ID:          "R-001.000.0001-security-deadbeef",
			Description: "Passwords MUST be hashed with SHA-256",
			Priority:    rule.PriorityMust,
			Category:    "security",
			Coord:       rule.Coordinate{Doc: "auth.md", Major: 1, Local: 1, Line: 5},
			ContentHash: "aaaa",
			Confidence:  0.9,
			MatcherIDs:  []string{"requirement-heading"},
		},
		{
			ID:          "R-002.001.0001-logging-cafecafe",
			Description: "Requests SHOULD be logged with request IDs",
			Priority:    rule.PriorityShould,
			Category:    "logging",
			Coord:       rule.Coordinate{Doc: "ops.md", Major: 2, Minor: 1, Local: 1, Line: 12},
			ContentHash: "bbbb",
			Confidence:  0.85,
			MatcherIDs:  []string{"normative-sentence"},
		},
		{
			ID:          "R-003.000.0001-meta-0badf00d",
			Description: "Applies to handlers and middleware",
			Priority:    rule.PriorityInfo,
			Category:    "meta",
			Coord:       rule.Coordinate{Doc: "ops.md", Major: 3, Local: 1, Line: 20},
			ContentHash: "cccc",
			Confidence:  0.7,
			MatcherIDs:  []string{"scope"},
		},
	}}
}

func TestAll_CanonicalOrderAndNames(t *testing.T) {
	emitters := All()
	require.Len(t, emitters, 5)
	names := make([]string, 0, 5)
	for _, e := range emitters {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{ContractName, PolicyName, ValidatorName, TestsName, CLIName}, names)
}

func TestContractEmitter(t *testing.T) {
	set := fixtureSet()
	art, err := (&ContractEmitter{}).Emit(set)
	require.NoError(t, err)

	var doc contractDoc
	require.NoError(t, yaml.Unmarshal(art.Data, &doc))
	assert.Equal(t, "v1", doc.Version)
	assert.Equal(t, 3, doc.RuleCount)
	require.Len(t, doc.Rules, 3)
	assert.Equal(t, set.Rules[0].ID, doc.Rules[0].ID)
	assert.Equal(t, rule.PriorityMust, doc.Rules[0].Priority)
	assert.Equal(t, "auth.md", doc.Rules[0].Coordinate.Doc)
}

func TestPolicyEmitter_GroupsByPriority(t *testing.T) {
	art, err := (&PolicyEmitter{}).Emit(fixtureSet())
	require.NoError(t, err)

	var doc policyDoc
	require.NoError(t, yaml.Unmarshal(art.Data, &doc))
	require.Len(t, doc.HardFail, 1)
	require.Len(t, doc.Warn, 1)
	require.Len(t, doc.Info, 1)
	assert.Equal(t, "R-001.000.0001-security-deadbeef", doc.HardFail[0].RuleID)
	assert.Equal(t, ClauseHardFail, doc.HardFail[0].Clause)
	assert.Contains(t, doc.Warn[0].Message, "[SHOULD]")
}

func TestValidatorEmitter(t *testing.T) {
	art, err := (&ValidatorEmitter{}).Emit(fixtureSet())
	require.NoError(t, err)
	src := string(art.Data)

	assert.True(t, strings.HasPrefix(src, "// Code generated"))
	assert.Contains(t, src, "package "+GeneratedPackage)
	assert.Contains(t, src, "const RuleCount = 3")
	assert.Contains(t, src, `"R-001.000.0001-security-deadbeef": check_R_001_000_0001_security_deadbeef,`)
	assert.Contains(t, src, "func check_R_001_000_0001_security_deadbeef(attestations map[string]bool) CheckResult {")
	assert.Contains(t, src, "func ValidateAll(attestations map[string]bool) []CheckResult {")
}

func TestTestsEmitter(t *testing.T) {
	art, err := (&TestsEmitter{}).Emit(fixtureSet())
	require.NoError(t, err)
	src := string(art.Data)

	assert.Contains(t, src, "var allRuleIDs = []string{")
	assert.Contains(t, src, `"R-002.001.0001-logging-cafecafe",`)
	assert.Contains(t, src, "func TestChecksCoverAllRules(t *testing.T) {")
	assert.Contains(t, src, "func TestEachRule(t *testing.T) {")
}

func TestCLIEmitter(t *testing.T) {
	art, err := (&CLIEmitter{}).Emit(fixtureSet())
	require.NoError(t, err)

	var doc cliDescriptor
	require.NoError(t, json.Unmarshal(art.Data, &doc))
	assert.Equal(t, 3, doc.RuleCount)
	assert.Equal(t, fixtureSet().IDs(), doc.RuleIDs)
	require.Len(t, doc.Operations, 4)
	assert.Equal(t, "list", doc.Operations[0].Name)
}

func TestCLIEmitter_EmptySet(t *testing.T) {
	art, err := (&CLIEmitter{}).Emit(&rule.Set{})
	require.NoError(t, err)
	assert.Contains(t, string(art.Data), `"rule_ids": []`)
}

func TestCheckFuncName(t *testing.T) {
	assert.Equal(t, "check_R_001_000_0001_api_ab12cd34", checkFuncName("R-001.000.0001-api-ab12cd34"))
}

func TestEmit_Deterministic(t *testing.T) {
	set := fixtureSet()
	for _, e := range All() {
		a, err := e.Emit(set)
		require.NoError(t, err)
		b, err := e.Emit(set)
		require.NoError(t, err)
		assert.Equal(t, a.Data, b.Data, e.Name())
	}
}
