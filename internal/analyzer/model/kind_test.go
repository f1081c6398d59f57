package model

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestErrorKindDisplayName(t *testing.T) {
	cases := []struct {
		name string
		kind ErrorKind
		want string
	}{
		{"named", Named("TypeError"), "TypeError"},
		{"anonymous", Anonymous(), "Error"},
		{"literal", Literal(), "Error"},
		{"variable", Variable("err"), "{variable: err}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.kind.DisplayName(), c.want)
		})
	}
}

func TestUnionKindsDedupesAndPreservesOrder(t *testing.T) {
	a := []ErrorKind{Named("A"), Named("B")}
	b := []ErrorKind{Named("B"), Named("C")}
	got := UnionKinds(a, b)
	want := []ErrorKind{Named("A"), Named("B"), Named("C")}
	assert.DeepEqual(t, got, want)
}

func TestSubtractKindsRemovesAllListedSets(t *testing.T) {
	raised := []ErrorKind{Named("A"), Named("B"), Literal()}
	documented := []ErrorKind{Named("B")}
	suppressedAlso := []ErrorKind{Literal()}
	got := SubtractKinds(raised, documented, suppressedAlso)
	want := []ErrorKind{Named("A")}
	assert.DeepEqual(t, got, want)
}

func TestContainsKindMatchesByKeyNotIdentity(t *testing.T) {
	set := []ErrorKind{Variable("e")}
	assert.Assert(t, ContainsKind(set, Variable("e")))
	assert.Assert(t, !ContainsKind(set, Named("e")))
}
