package esdlcore

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapeditor/esdlcore/esdl"
	"github.com/mapeditor/esdlcore/model"
)

// buildNetwork returns Area A1 > Area A2 > {Producer S, Pipe P1}, each with
// an in and an out port, where S's out port feeds P1's in port.
func buildNetwork(t *testing.T) (top, sub, producer, pipe *model.Object) {
	t.Helper()
	top = esdl.NewArea("A1")
	sub = esdl.NewArea("A2")
	require.NoError(t, top.List("area").Append(sub))

	var err error
	producer, err = esdl.AddAsset(sub, esdl.Producer, "S")
	require.NoError(t, err)
	pipe, err = esdl.AddAsset(sub, esdl.Pipe, "P1")
	require.NoError(t, err)

	require.NoError(t, esdl.Connect(port(t, producer, esdl.OutPort), port(t, pipe, esdl.InPort)))
	return top, sub, producer, pipe
}

func port(t *testing.T, asset *model.Object, c *model.Class) *model.Object {
	t.Helper()
	for _, p := range asset.List("port").Objects() {
		if p.Class() == c {
			return p
		}
	}
	t.Fatalf("%s has no %s", asset, c.Name)
	return nil
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestDeepCopy_ContainmentIsomorphism(t *testing.T) {
	top, sub, producer, pipe := buildNetwork(t)

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(top, WithLogger(quietLogger(&logs)))

	require.NotNil(t, cp)
	assert.Empty(t, report.Unresolved)
	assert.Empty(t, logs.String())

	originals := append([]*model.Object{top}, top.AllContents()...)
	copies := append([]*model.Object{cp}, cp.AllContents()...)
	require.Len(t, copies, len(originals))
	for i := range originals {
		assert.NotSame(t, originals[i], copies[i])
		assert.Same(t, originals[i].Class(), copies[i].Class())
		assert.Equal(t, originals[i].GetString("name"), copies[i].GetString("name"))
		assert.Same(t, copies[i], report.Copies[originals[i]])
	}

	subCp := report.Copies[sub]
	assert.Same(t, cp, subCp.Container())
	assert.Same(t, subCp, report.Copies[pipe].GetObject("area"))

	// The depth-3 cross reference points at the copy of its target.
	outCp := report.Copies[port(t, producer, esdl.OutPort)]
	inCp := report.Copies[port(t, pipe, esdl.InPort)]
	assert.Equal(t, []any{inCp}, outCp.List("connectedTo").Items())
	assert.Equal(t, []any{outCp}, inCp.List("connectedTo").Items())

	// The original graph is untouched.
	assert.Equal(t, 1, port(t, producer, esdl.OutPort).List("connectedTo").Len())
}

func TestDeepCopy_CycleSafety(t *testing.T) {
	asset := esdl.NewProducer("S")
	strategy := esdl.New(esdl.ControlStrategy, "CS")
	require.NoError(t, asset.Set("controlStrategy", strategy))
	require.Same(t, asset, strategy.GetObject("energyAsset"))

	cp, report := DeepCopyAll([]*model.Object{asset, strategy})

	require.Len(t, cp, 2)
	assert.Empty(t, report.Unresolved)
	assert.Same(t, cp[1], cp[0].GetObject("controlStrategy"))
	assert.Same(t, cp[0], cp[1].GetObject("energyAsset"))
	assert.Same(t, strategy, asset.GetObject("controlStrategy"))
}

func TestDeepCopy_CycleThroughRoot(t *testing.T) {
	asset := esdl.NewProducer("S")
	out, in := esdl.NewOutPort("OP"), esdl.NewInPort("IP")
	require.NoError(t, asset.List("port").Append(out))
	require.NoError(t, asset.List("port").Append(in))
	require.NoError(t, esdl.Connect(out, in))
	strategy := esdl.New(esdl.ControlStrategy, "CS")
	require.NoError(t, asset.Set("controlStrategy", strategy))

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(asset, WithLogger(quietLogger(&logs)))

	require.NotNil(t, cp)
	assert.Len(t, report.Copies, 3)
	outCp, inCp := report.Copies[out], report.Copies[in]
	assert.Equal(t, []any{inCp}, outCp.List("connectedTo").Items())
	assert.Same(t, cp, outCp.GetObject("energyasset"))

	require.Len(t, report.Unresolved, 1)
	assert.Same(t, strategy, report.Unresolved[0].Target)
	assert.True(t, report.Unresolved[0].Dropped)
	assert.Nil(t, cp.GetObject("controlStrategy"))

	assert.Same(t, strategy, asset.GetObject("controlStrategy"))
	assert.Same(t, asset, strategy.GetObject("energyAsset"))
}

func TestDeepCopy_ExternalSingleOppositeIsKeptByOriginal(t *testing.T) {
	_, es := esdl.NewEnergySystem("ES", "memory://es.esdl")
	strategy := esdl.New(esdl.ControlStrategy, "CS")
	require.NoError(t, es.List("controlStrategies").Append(strategy))
	pipe, err := esdl.AddAsset(esdl.TopArea(es), esdl.Pipe, "P1")
	require.NoError(t, err)
	require.NoError(t, pipe.Set("controlStrategy", strategy))

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(pipe, WithLogger(quietLogger(&logs)))

	assert.Nil(t, cp.GetObject("controlStrategy"))
	assert.Same(t, strategy, pipe.GetObject("controlStrategy"))
	assert.Same(t, pipe, strategy.GetObject("energyAsset"))

	require.Len(t, report.Unresolved, 1)
	assert.Same(t, pipe, report.Unresolved[0].Owner)
	assert.True(t, report.Unresolved[0].Dropped)
	assert.Contains(t, logs.String(), "dropped=true")
}

func TestDeepCopy_PreservesReferenceOrder(t *testing.T) {
	area := esdl.NewArea("A")
	ipb, x, ipa := esdl.NewInPort("IPb"), esdl.NewOutPort("X"), esdl.NewInPort("IPa")
	y := esdl.NewOutPort("Y")
	for _, asset := range []*model.Object{
		assetWith(t, esdl.Consumer, "a", ipb),
		assetWith(t, esdl.Producer, "b", x, y),
		assetWith(t, esdl.Consumer, "c", ipa),
	} {
		require.NoError(t, area.List("asset").Append(asset))
	}
	require.NoError(t, esdl.Connect(x, ipa))
	require.NoError(t, esdl.Connect(x, ipb))
	require.NoError(t, esdl.Connect(y, ipb))
	require.NoError(t, ipb.List("connectedTo").Move(1, 0))
	require.Equal(t, []any{y, x}, ipb.List("connectedTo").Items())

	_, report := DeepCopyWithReport(area)

	for orig, cp := range report.Copies {
		if orig.Class().Feature("connectedTo") == nil || orig.List("connectedTo").Len() == 0 {
			continue
		}
		var want []any
		for _, target := range orig.List("connectedTo").Objects() {
			want = append(want, report.Copies[target])
		}
		assert.Equal(t, want, cp.List("connectedTo").Items(), "connectedTo of %s", orig)
	}
	assert.Equal(t, []any{report.Copies[ipa], report.Copies[ipb]}, report.Copies[x].List("connectedTo").Items())
}

func assetWith(t *testing.T, c *model.Class, name string, ports ...*model.Object) *model.Object {
	t.Helper()
	asset := esdl.New(c, name)
	for _, p := range ports {
		require.NoError(t, asset.List("port").Append(p))
	}
	return asset
}

func TestDeepCopy_MutualReferencesInsideRoot(t *testing.T) {
	_, es := esdl.NewEnergySystem("ES", "memory://es.esdl")
	strategy := esdl.New(esdl.ControlStrategy, "CS")
	require.NoError(t, es.List("controlStrategies").Append(strategy))
	asset, err := esdl.AddAsset(esdl.TopArea(es), esdl.Consumer, "C")
	require.NoError(t, err)
	require.NoError(t, asset.Set("controlStrategy", strategy))

	cp, report := DeepCopyWithReport(es)

	assert.Empty(t, report.Unresolved)
	assetCp, strategyCp := report.Copies[asset], report.Copies[strategy]
	require.NotNil(t, assetCp)
	require.NotNil(t, strategyCp)
	assert.Same(t, strategyCp, assetCp.GetObject("controlStrategy"))
	assert.Same(t, assetCp, strategyCp.GetObject("energyAsset"))
	assert.Same(t, strategyCp, cp.List("controlStrategies").At(0))
}

func TestDeepCopy_SelfReference(t *testing.T) {
	area := esdl.NewArea("A1")
	out := esdl.NewOutPort("OP")
	in := esdl.NewInPort("IP")
	asset := esdl.NewProducer("S")
	require.NoError(t, asset.List("port").Append(out))
	require.NoError(t, asset.List("port").Append(in))
	require.NoError(t, area.List("asset").Append(asset))
	require.NoError(t, esdl.Connect(out, in))

	cp := DeepCopy(area)

	cpAsset := cp.List("asset").Objects()[0]
	ports := cpAsset.List("port").Objects()
	require.Len(t, ports, 2)
	assert.Equal(t, []any{ports[1]}, ports[0].List("connectedTo").Items())
	assert.Equal(t, []any{ports[0]}, ports[1].List("connectedTo").Items())
}

func TestDeepCopy_ExternalReferenceFallsBack(t *testing.T) {
	_, _, producer, pipe := buildNetwork(t)
	pipeIn := port(t, pipe, esdl.InPort)
	producerOut := port(t, producer, esdl.OutPort)

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(pipe, WithLogger(quietLogger(&logs)))

	require.Len(t, report.Unresolved, 1)
	assert.Same(t, pipeIn, report.Unresolved[0].Owner)
	assert.Same(t, producerOut, report.Unresolved[0].Target)
	assert.Contains(t, logs.String(), "outside the copied subtree")

	inCp := port(t, cp, esdl.InPort)
	assert.Equal(t, []any{producerOut}, inCp.List("connectedTo").Items())
	assert.Nil(t, cp.Container(), "the copy root is not attached anywhere")

	// The opposite of a kept external link is mirrored on the original.
	assert.Equal(t, []any{pipeIn, inCp}, producerOut.List("connectedTo").Items())
}

func TestDeepCopy_DropExternalReferences(t *testing.T) {
	_, _, producer, pipe := buildNetwork(t)
	producerOut := port(t, producer, esdl.OutPort)

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(pipe, DropExternalReferences(), WithLogger(quietLogger(&logs)))

	assert.Len(t, report.Unresolved, 1)
	assert.Zero(t, port(t, cp, esdl.InPort).List("connectedTo").Len())
	assert.Equal(t, 1, producerOut.List("connectedTo").Len())
}

func TestDeepCopy_SingleReferenceOutside(t *testing.T) {
	heat := esdl.NewCarrier("heat")
	pipe := esdl.NewPipe("P1")
	in := esdl.NewInPort("IP")
	require.NoError(t, pipe.List("port").Append(in))
	require.NoError(t, in.Set("carrier", heat))

	var logs bytes.Buffer
	cp := DeepCopy(pipe, WithLogger(quietLogger(&logs)))

	assert.Same(t, heat, cp.List("port").Objects()[0].GetObject("carrier"))
}

func TestDeepCopy_IgnoreFeature(t *testing.T) {
	top, _, _, _ := buildNetwork(t)

	var logs bytes.Buffer
	cp, report := DeepCopyWithReport(top, IgnoreFeature("asset"), WithLogger(quietLogger(&logs)))

	require.Equal(t, 1, cp.List("area").Len())
	sub := cp.List("area").Objects()[0]
	assert.Zero(t, sub.List("asset").Len())
	assert.Len(t, report.Copies, 2)
}

func TestDeepCopy_RegenerateIDs(t *testing.T) {
	top, _, _, _ := buildNetwork(t)
	cp := DeepCopy(top, RegenerateIDs("id"))

	seen := map[string]bool{}
	for _, obj := range top.AllContents() {
		seen[obj.GetString("id")] = true
	}
	for _, obj := range cp.AllContents() {
		id := obj.GetString("id")
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "copy of %s reuses an original id", obj)
	}
}

func TestDeepCopy_SingleContainment(t *testing.T) {
	_, es := esdl.NewEnergySystem("ES", "memory://es.esdl")

	cp := DeepCopy(es)

	area := esdl.TopArea(cp)
	require.NotNil(t, area)
	assert.NotSame(t, esdl.TopArea(es), area)
	assert.Equal(t, "Untitled area", area.GetString("name"))
	assert.Nil(t, cp.Resource())
}

func TestDeepCopy_Nil(t *testing.T) {
	assert.Nil(t, DeepCopy(nil))

	out, report := DeepCopyAll([]*model.Object{nil})
	assert.Equal(t, []*model.Object{nil}, out)
	assert.Empty(t, report.Copies)
}
