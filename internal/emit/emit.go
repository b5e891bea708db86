// Package emit generates the five synchronized artifacts from a final rule
// set. Every emitter is a stateless transform over the same ordered set, and
// every artifact is self-describing: the consistency checker re-derives the
// rule ID set from the emitted bytes alone.
package emit

import "normscan/internal/rule"

// Artifact file names inside the output directory.
const (
	ContractName  = "contract.yaml"
	PolicyName    = "policy.yaml"
	ValidatorName = "validator.go"
	TestsName     = "validator_test.go"
	CLIName       = "cli.json"
)

// GeneratedPackage is the package name of the generated validator sources.
const GeneratedPackage = "rulecheck"

// Artifact is one emitted output, held in memory. Writing to disk is the
// caller's job; the engine itself never touches the filesystem here.
type Artifact struct {
	Name string
	Data []byte
}

// Emitter turns the rule set into one artifact.
type Emitter interface {
	Name() string
	Emit(set *rule.Set) (Artifact, error)
}

// All returns the five emitters in canonical artifact order.
func All() []Emitter {
	return []Emitter{
		&ContractEmitter{},
		&PolicyEmitter{},
		&ValidatorEmitter{},
		&TestsEmitter{},
		&CLIEmitter{},
	}
}
