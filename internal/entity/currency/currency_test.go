package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OnResolveKnownName_ShouldReturnCode(t *testing.T) {
	m := DefaultCodeMap()

	code, ok := m.Resolve("Argentine Peso")
	assert.True(t, ok)
	assert.Equal(t, "ARS", code)

	code, ok = m.Resolve("US Dollar")
	assert.True(t, ok)
	assert.Equal(t, USD, code)
}

func Test_OnResolveUnknownName_ShouldReportUnmapped(t *testing.T) {
	m := DefaultCodeMap()

	code, ok := m.Resolve("Martian Credit")
	assert.False(t, ok)
	assert.Empty(t, code)
}

func Test_OnName_ShouldReverseResolve(t *testing.T) {
	m := DefaultCodeMap()

	name, ok := m.Name(EUR)
	assert.True(t, ok)
	assert.Equal(t, "Euro", name)

	_, ok = m.Name("XXX")
	assert.False(t, ok)
}

func Test_OnNewCodeMap_ShouldNotObserveLaterChanges(t *testing.T) {
	src := map[string]string{"Swiss Franc": "CHF"}
	m := NewCodeMap(src)
	src["Thai Baht"] = "THB"

	_, ok := m.Resolve("Thai Baht")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func Test_OnCodes_ShouldBeSortedAndUnique(t *testing.T) {
	codes := DefaultCodeMap().Codes()

	assert.Len(t, codes, len(defaultNames))
	assert.IsIncreasing(t, codes)
}
