package analyzer

import (
	"github.com/go-json-experiment/json"
)

// MarshalResult renders a Result in the wire shape spec.md §6 describes
// (snake_case field names via the struct tags on Result/WireDiagnostic),
// using the v2-style experimental encoder the teacher's own printer
// package reaches for instead of encoding/json. A method on Result itself
// would shadow this with an infinite-recursion hazard (the experimental
// encoder still honors the stdlib Marshaler interface), so this stays a
// plain function.
func MarshalResult(r Result) ([]byte, error) {
	return json.Marshal(r)
}
