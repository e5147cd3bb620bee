package lhttptest

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func MethodGenerator() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	})
}

// RootGenerator draws service roots, with or without the trailing slash.
func RootGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`(http://|https://)[a-z]+[a-z0-9-]*(:[0-9]+)?(/[a-z0-9-]+)*/?`)
}

// UrlSegmentGenerator draws path segments that need no escaping.
func UrlSegmentGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-zA-Z0-9._~-]*`)
}

// IdentifierGenerator draws arbitrary non-empty resource identifiers.
func IdentifierGenerator() *rapid.Generator[string] {
	return rapid.StringN(1, -1, -1)
}

// ErrorStatusGenerator draws 4xx and 5xx statuses.
func ErrorStatusGenerator() *rapid.Generator[int] {
	return rapid.IntRange(400, 599)
}

// CheckHeaders asserts other carries the same values as ref for every key of ref.
func CheckHeaders(t assert.TestingT, ref, other http.Header) {
	for k, vals := range ref {
		otherVals := other.Values(k)
		assert.ElementsMatchf(t, vals, otherVals, "values don't match for key %s", k)
	}
}
