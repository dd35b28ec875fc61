package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, buildTestResult()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Contains(t, out, `viewBox="0.000000 0.000000 200.000000 100.000000"`)
	assert.Contains(t, out, "fill='#102030'")

	// One polygon per path: 1 + 1 + 2
	assert.Equal(t, 4, strings.Count(out, "<polygon"))
	assert.Equal(t, 1, strings.Count(out, "fill='#ef7d00'"))
	assert.Contains(t, out, "data-order='2'")
}

func TestWriteSVG_WriteError(t *testing.T) {
	err := WriteSVG(failingWriter{}, buildTestResult())
	assert.EqualError(t, err, "disk full")
}

func TestExtraparams(t *testing.T) {
	assert.Equal(t, "fill='red' style='stroke:none' ", extraparams([]string{"fill='red'", "stroke:none", ""}))
	assert.Equal(t, "", extraparams(nil))
}
