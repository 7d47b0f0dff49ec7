package esdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnergySystem(t *testing.T) {
	res, es := NewEnergySystem("demo", "memory://demo.esdl")

	assert.Same(t, res, es.Resource())
	assert.Equal(t, "demo", es.GetString("name"))
	assert.NotEmpty(t, es.GetString("id"))

	area := TopArea(es)
	require.NotNil(t, area)
	assert.Equal(t, "Untitled area", area.GetString("name"))
	assert.Same(t, res, area.Resource())
}

func TestAddAsset(t *testing.T) {
	_, es := NewEnergySystem("demo", "")
	area := TopArea(es)

	pipe, err := AddAsset(area, Pipe, "P1")
	require.NoError(t, err)
	assert.Same(t, area, pipe.Container())
	assert.Same(t, area, pipe.GetObject("area"), "asset.area mirrors area.asset")

	ports := pipe.List("port")
	require.Equal(t, 2, ports.Len())
	in, _ := FindByName(es.Resource(), "P1-in")
	out, _ := FindByName(es.Resource(), "P1-out")
	assert.Same(t, InPort, in.Class())
	assert.Same(t, OutPort, out.Class())
	assert.Same(t, pipe, in.GetObject("energyasset"))

	_, err = AddAsset(area, Carrier, "heat")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	out, in := NewOutPort("OP1"), NewInPort("IP1")

	require.NoError(t, Connect(out, in))
	assert.True(t, out.List("connectedTo").Contains(in))
	assert.True(t, in.List("connectedTo").Contains(out))

	assert.Error(t, Connect(in, out))
}

func TestFindByName(t *testing.T) {
	res, es := NewEnergySystem("demo", "")
	_, err := AddAsset(TopArea(es), Producer, "S")
	require.NoError(t, err)

	obj, ok := FindByName(res, "S")
	require.True(t, ok)
	assert.Same(t, Producer, obj.Class())

	_, ok = FindByName(res, "missing")
	assert.False(t, ok)
}

func TestClassByName(t *testing.T) {
	c, ok := ClassByName("Pipe")
	require.True(t, ok)
	assert.Same(t, Pipe, c)

	for _, abstract := range []string{"Item", "Asset", "Port"} {
		_, ok := ClassByName(abstract)
		assert.False(t, ok, abstract)
	}
}

func TestNew_FreshIDs(t *testing.T) {
	a, b := NewPipe("P"), NewPipe("P")
	assert.NotEqual(t, a.GetString("id"), b.GetString("id"))
	assert.Equal(t, StateEnabled, a.Get("state"))
	assert.Equal(t, 0.0, a.Get("length"))
}
