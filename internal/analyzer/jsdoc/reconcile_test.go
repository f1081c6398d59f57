package jsdoc

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/does-it-throw/analyzer/internal/analyzer/model"
)

func TestParseDocBlockBraceForm(t *testing.T) {
	raw := "*\n * Reads a config file.\n * @throws {FileNotFoundError}\n "
	doc := ParseDocBlock(raw)
	assert.DeepEqual(t, doc.Documented, []model.ErrorKind{model.Named("FileNotFoundError")})
}

func TestParseDocBlockBareForm(t *testing.T) {
	raw := "*\n * @throws TypeError, RangeError\n "
	doc := ParseDocBlock(raw)
	assert.DeepEqual(t, doc.Documented, []model.ErrorKind{model.Named("TypeError"), model.Named("RangeError")})
}

func TestParseDocBlockUnionTypeInsideBraces(t *testing.T) {
	raw := "*\n * @throws {TypeError|RangeError}\n "
	doc := ParseDocBlock(raw)
	assert.DeepEqual(t, doc.Documented, []model.ErrorKind{model.Named("TypeError"), model.Named("RangeError")})
}

func TestParseDocBlockMultipleTagsAccumulate(t *testing.T) {
	raw := "*\n * @throws {TypeError}\n * @throws {RangeError}\n "
	doc := ParseDocBlock(raw)
	assert.DeepEqual(t, doc.Documented, []model.ErrorKind{model.Named("TypeError"), model.Named("RangeError")})
}

func TestParseDocBlockTagNameBoundaryRejectsLookalike(t *testing.T) {
	raw := "*\n * @throwsSomethingElse\n * @throws {TypeError}\n "
	doc := ParseDocBlock(raw)
	assert.DeepEqual(t, doc.Documented, []model.ErrorKind{model.Named("TypeError")})
}

func TestParseParamThrowsAssociatesTrailingThrowsToNearestParam(t *testing.T) {
	raw := "*\n * @param {Function} cb\n * @throws {TimeoutError}\n * @param {string} name\n "
	got := ParseParamThrows(raw)
	want := []model.ParamThrows{
		{ParamName: "cb", Documented: []model.ErrorKind{model.Named("TimeoutError")}},
		{ParamName: "name"},
	}
	assert.DeepEqual(t, got, want)
}

func TestParseCallbackTypeReadsOwnThrows(t *testing.T) {
	raw := "*\n * @callback OnError\n * @throws {NetworkError}\n "
	cb, ok := ParseCallbackType(raw)
	assert.Assert(t, ok)
	assert.Equal(t, cb.Name, "OnError")
	assert.DeepEqual(t, cb.Documented, []model.ErrorKind{model.Named("NetworkError")})
}

func TestParseCallbackTypeTypedefWithBracedType(t *testing.T) {
	raw := "*\n * @typedef {Function} OnError\n * @throws {NetworkError}\n "
	cb, ok := ParseCallbackType(raw)
	assert.Assert(t, ok)
	assert.Equal(t, cb.Name, "OnError")
}

func TestParseCallbackTypeFalseWithoutNameOrTag(t *testing.T) {
	raw := "*\n * Just a regular function comment.\n "
	_, ok := ParseCallbackType(raw)
	assert.Assert(t, !ok)
}
