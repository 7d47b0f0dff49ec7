package esdlcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapeditor/esdlcore/esdl"
	"github.com/mapeditor/esdlcore/model"
)

func TestClone_Attributes(t *testing.T) {
	pipe := esdl.NewPipe("P1")
	require.NoError(t, pipe.Set("length", 250.0))
	require.NoError(t, pipe.Set("state", esdl.StateOptional))
	require.NoError(t, pipe.Set("geometry", esdl.Line{Points: []esdl.Point{{Lat: 52, Lon: 4}}}))
	require.NoError(t, pipe.List("tags").Append("district"))

	cp := Clone(pipe)

	require.NotSame(t, pipe, cp)
	assert.Same(t, pipe.Class(), cp.Class())
	assert.Equal(t, "P1", cp.GetString("name"))
	assert.Equal(t, pipe.Get("id"), cp.Get("id"))
	assert.Equal(t, 250.0, cp.Get("length"))
	assert.Equal(t, esdl.StateOptional, cp.GetString("state"))
	assert.Equal(t, []any{"district"}, cp.List("tags").Items())
	assert.Equal(t, pipe.Get("geometry"), cp.Get("geometry"))
}

func TestClone_DoesNotAlias(t *testing.T) {
	pipe := esdl.NewPipe("P1")
	require.NoError(t, pipe.Set("geometry", esdl.Line{Points: []esdl.Point{{Lat: 52, Lon: 4}}}))
	require.NoError(t, pipe.List("tags").Append("a"))

	cp := Clone(pipe)
	require.NoError(t, cp.List("tags").Append("b"))
	cp.Get("geometry").(esdl.Line).Points[0].Lat = 0

	assert.Equal(t, []any{"a"}, pipe.List("tags").Items())
	assert.Equal(t, 52.0, pipe.Get("geometry").(esdl.Line).Points[0].Lat)
}

func TestClone_SkipsReferences(t *testing.T) {
	area := esdl.NewArea("A1")
	pipe, err := esdl.AddAsset(area, esdl.Pipe, "P1")
	require.NoError(t, err)

	cp := Clone(pipe)

	assert.Zero(t, cp.List("port").Len())
	assert.Nil(t, cp.Container())
	assert.Same(t, area, pipe.Container())
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, Clone(nil))
}

func TestClone_Options(t *testing.T) {
	pipe := esdl.NewPipe("P1")
	require.NoError(t, pipe.Set("description", "main line"))

	cp := Clone(pipe, IgnoreFeature("description"), RegenerateIDs("id"))

	assert.Nil(t, cp.Get("description"))
	assert.NotEmpty(t, cp.GetString("id"))
	assert.NotEqual(t, pipe.GetString("id"), cp.GetString("id"))
	assert.Equal(t, "P1", cp.GetString("name"))
}

func TestClone_DefaultsAreIndependent(t *testing.T) {
	a := model.New(esdl.Area)
	b := Clone(a)
	assert.Equal(t, "UNDEFINED", b.GetString("scope"))
}
