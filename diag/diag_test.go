package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	e := New(3, 7, "undefined identifier: b")
	assert.Equal(t, "Line[3] Col[7]: undefined identifier: b", e.Error())
}

func TestUnpositionedErrorFormatting(t *testing.T) {
	e := Unpositioned("cannot open source file")
	assert.Equal(t, "cannot open source file", e.Error())
}

func TestNewfFormatsMessage(t *testing.T) {
	e := Newf(1, 1, "expected %s, got %s", "(", "{")
	assert.Equal(t, "Line[1] Col[1]: expected (, got {", e.Error())
}
