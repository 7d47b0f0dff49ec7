package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapeditor/esdlcore/esdl"
)

func TestCopyValue_Scalars(t *testing.T) {
	for _, v := range []any{nil, 42, 3.5, "P1", true, esdl.StateEnabled} {
		assert.Equal(t, v, CopyValue(v))
	}
}

func TestCopyValue_Geometry(t *testing.T) {
	src := esdl.Line{Points: []esdl.Point{{Lat: 52.1, Lon: 5.1}, {Lat: 52.2, Lon: 5.2}}}

	dst, ok := CopyValue(src).(esdl.Line)
	require.True(t, ok)
	require.Equal(t, src, dst)

	dst.Points[0].Lat = 0
	assert.Equal(t, 52.1, src.Points[0].Lat, "copy must not alias the original points")
}

func TestCopyValue_Slice(t *testing.T) {
	src := []float64{1, 2, 3}
	dst := CopyValue(src).([]float64)
	dst[0] = 9
	assert.Equal(t, 1.0, src[0])
}

func TestCopyValue_ObjectsAreShared(t *testing.T) {
	p := esdl.NewPipe("P1")
	assert.Same(t, p, CopyValue(p))
}
