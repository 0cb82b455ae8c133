package shared

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringBuffer struct {
	strings.Builder
	closed bool
}

func (b *stringBuffer) Close() error {
	b.closed = true
	return nil
}

func TestNewPrinterValidation(t *testing.T) {
	_, err := NewPrinter("  ")
	assert.Error(t, err)

	_, err = NewPrinter("  ", nil)
	assert.Error(t, err)
}

func TestPrinterIndentsEveryLine(t *testing.T) {
	buf := new(stringBuffer)
	p, err := NewPrinter("│  ", buf)
	require.NoError(t, err)

	require.NoError(t, p.Writeln("first\nsecond", 1))
	assert.Equal(t, "│  first\n│  second\n", buf.String())
}

func TestPrinterZeroIndent(t *testing.T) {
	buf := new(stringBuffer)
	p, err := NewPrinter("  ", buf)
	require.NoError(t, err)

	require.NoError(t, p.Write("plain", 0))
	assert.Equal(t, "plain", buf.String())
}

func TestPrinterWritef(t *testing.T) {
	buf := new(stringBuffer)
	p, err := NewPrinter("  ", buf)
	require.NoError(t, err)

	require.NoError(t, p.Writef(2, "%d leads", 3))
	assert.Equal(t, "    3 leads", buf.String())
}

func TestPrinterFansOutToAllHooks(t *testing.T) {
	a, b := new(stringBuffer), new(stringBuffer)
	p, err := NewPrinter("", a, b)
	require.NoError(t, err)

	require.NoError(t, p.Writeln("mirrored", 0))
	assert.Equal(t, a.String(), b.String())

	require.NoError(t, p.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
