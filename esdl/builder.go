package esdl

import (
	"fmt"

	"github.com/mapeditor/esdlcore/model"
)

// NewEnergySystem creates an energy system with one instance holding an
// empty top-level area, attached as the root of a new resource.
func NewEnergySystem(name, uri string) (*model.Resource, *model.Object) {
	es := New(EnergySystem, name)
	inst := New(Instance, "Untitled instance")
	_ = es.List("instance").Append(inst)
	_ = inst.Set("area", NewArea("Untitled area"))

	res := model.NewResource(uri)
	res.Append(es)
	return res, es
}

// TopArea returns the area of the first instance of es.
func TopArea(es *model.Object) *model.Object {
	insts := es.List("instance")
	if insts.Len() == 0 {
		return nil
	}
	return insts.At(0).(*model.Object).GetObject("area")
}

// AddAsset creates an asset of class c with one InPort and one OutPort and
// appends it to area.
func AddAsset(area *model.Object, c *model.Class, name string) (*model.Object, error) {
	if !c.IsA(Asset) {
		return nil, fmt.Errorf("%s is not an asset class", c.Name)
	}
	asset := New(c, name)
	ports := asset.List("port")
	if err := ports.Append(NewInPort(name + "-in")); err != nil {
		return nil, err
	}
	if err := ports.Append(NewOutPort(name + "-out")); err != nil {
		return nil, err
	}
	if err := area.List("asset").Append(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Connect links an OutPort to an InPort. The reverse side is maintained by
// the model.
func Connect(out, in *model.Object) error {
	if !out.Class().IsA(OutPort) || !in.Class().IsA(InPort) {
		return fmt.Errorf("connect %s to %s: expected OutPort and InPort", out, in)
	}
	return out.List("connectedTo").Append(in)
}

// FindByName returns the first object of res whose name attribute equals
// name.
func FindByName(res *model.Resource, name string) (*model.Object, bool) {
	for _, obj := range res.AllContents() {
		if f := obj.Class().Feature("name"); f != nil && obj.GetString("name") == name {
			return obj, true
		}
	}
	return nil, false
}
