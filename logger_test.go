package traceplot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	l, err := New[int64, float64](3)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Variables())
	assert.Equal(t, []string{"", "", ""}, l.Legend())
	assert.Equal(t, Linear, l.YScale())
	assert.Empty(t, l.XLabel())
	assert.Empty(t, l.YLabel())
	assert.Zero(t, l.Len())
}

func TestNewOptions(t *testing.T) {
	l, err := New[int64, float64](2,
		WithLegend("train", "validation"),
		WithXLabel("step"),
		WithYLabel("loss"),
		WithLog10(),
		WithColormap("dark"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"train", "validation"}, l.Legend())
	assert.Equal(t, "step", l.XLabel())
	assert.Equal(t, "loss", l.YLabel())
	assert.Equal(t, Log10, l.YScale())
	assert.Equal(t, "dark", l.Colormap())
}

func TestNewLegendArityMismatch(t *testing.T) {
	_, err := New[int64, float64](2, WithLegend("only one"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewNonPositiveVariables(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := New[int64, float64](count)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr, "variables=%d", count)
	}
}

func TestAppendShapeMismatch(t *testing.T) {
	l, err := New[int64, float64](3)
	require.NoError(t, err)
	err = l.Append(0, 1.0, 2.0)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 3, shapeErr.Want)
	assert.Equal(t, 2, shapeErr.Got)
	assert.Zero(t, l.Len(), "failed append must leave the logger unchanged")
}

func TestAppendScalarForm(t *testing.T) {
	l, err := New[int, float32](1)
	require.NoError(t, err)
	require.NoError(t, l.Append(0, 0.5))
	require.NoError(t, l.Append(1, 0.25))
	assert.Equal(t, 2, l.Len())
}

func TestAppendDoesNotAliasCallerSlice(t *testing.T) {
	l, err := New[int, float64](2)
	require.NoError(t, err)
	values := []float64{1, 2}
	require.NoError(t, l.Append(0, values...))
	values[0] = 99
	pts, err := l.Downsample(10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pts[0].Mean[0])
}

func TestRange(t *testing.T) {
	l, err := New[int, float64](2)
	require.NoError(t, err)
	_, _, ok := l.Range()
	assert.False(t, ok)
	require.NoError(t, l.Append(0, 3, -1))
	require.NoError(t, l.Append(1, 7, 2))
	minV, maxV, ok := l.Range()
	require.True(t, ok)
	assert.Equal(t, -1.0, minV)
	assert.Equal(t, 7.0, maxV)
}
