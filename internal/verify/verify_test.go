package verify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normscan/internal/emit"
	"normscan/internal/rule"
)

func emitFixture(t *testing.T) ([]emit.Artifact, []string) {
	t.Helper()
	set := &rule.Set{Rules: []rule.Rule{
		{
			ID:          "R-001.000.0001-security-deadbeef",
			Description: "Passwords MUST be hashed",
			Priority:    rule.PriorityMust,
			Category:    "security",
			ContentHash: "aaaa",
			Confidence:  0.9,
		},
		{
			ID:          "R-002.000.0001-logging-cafecafe",
			Description: "Requests SHOULD be logged",
			Priority:    rule.PriorityShould,
			Category:    "logging",
			ContentHash: "bbbb",
			Confidence:  0.85,
		},
	}}

	var artifacts []emit.Artifact
	for _, e := range emit.All() {
		a, err := e.Emit(set)
		require.NoError(t, err)
		artifacts = append(artifacts, a)
	}
	return artifacts, set.IDs()
}

func TestCheck_ConsistentArtifactsPass(t *testing.T) {
	artifacts, want := emitFixture(t)
	res := Check(artifacts, want)
	assert.True(t, res.Passed)
	assert.Equal(t, 2, res.RuleCount)
	assert.Empty(t, res.Mismatches)
	assert.NoError(t, res.Err())
}

func TestCheck_CorruptedPolicyIsFatal(t *testing.T) {
	artifacts, want := emitFixture(t)
	for i := range artifacts {
		if artifacts[i].Name == emit.PolicyName {
			// Drop the logging rule's clause from the emitted bytes.
			artifacts[i].Data = bytes.ReplaceAll(artifacts[i].Data,
				[]byte("R-002.000.0001-logging-cafecafe"),
				[]byte("R-999.000.0001-logging-cafecafe"))
		}
	}

	res := Check(artifacts, want)
	require.False(t, res.Passed)
	require.Len(t, res.Mismatches, 1)

	m := res.Mismatches[0]
	assert.Equal(t, emit.PolicyName, m.Artifact)
	assert.Equal(t, []string{"R-002.000.0001-logging-cafecafe"}, m.Missing)
	assert.Equal(t, []string{"R-999.000.0001-logging-cafecafe"}, m.Extra)

	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistent))
	assert.Contains(t, err.Error(), "R-002.000.0001-logging-cafecafe")
}

func TestCheck_MissingArtifact(t *testing.T) {
	artifacts, want := emitFixture(t)
	var trimmed []emit.Artifact
	for _, a := range artifacts {
		if a.Name != emit.CLIName {
			trimmed = append(trimmed, a)
		}
	}

	res := Check(trimmed, want)
	require.False(t, res.Passed)
	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, emit.CLIName, res.Mismatches[0].Artifact)
}

func TestParseIDs_AllArtifacts(t *testing.T) {
	artifacts, want := emitFixture(t)
	for _, a := range artifacts {
		ids, err := ParseIDs(a.Name, a.Data)
		require.NoError(t, err, a.Name)
		assert.ElementsMatch(t, want, ids, a.Name)
	}
}

func TestParseIDs_UnknownArtifact(t *testing.T) {
	_, err := ParseIDs("bogus.txt", nil)
	assert.Error(t, err)
}

func TestCheckDir(t *testing.T) {
	artifacts, _ := emitFixture(t)
	dir := t.TempDir()
	for _, a := range artifacts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, a.Name), a.Data, 0o644))
	}

	res, err := CheckDir(dir)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	// Truncating the generated validator breaks the agreement.
	require.NoError(t, os.WriteFile(filepath.Join(dir, emit.ValidatorName), []byte("package rulecheck\n"), 0o644))
	res, err = CheckDir(dir)
	require.NoError(t, err)
	assert.False(t, res.Passed)
}

func TestCheckDir_MissingContract(t *testing.T) {
	_, err := CheckDir(t.TempDir())
	assert.Error(t, err)
}
