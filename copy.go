// Package esdlcore copies ESDL model graphs.
//
// Clone duplicates the plain data of one object. DeepCopy duplicates a whole
// containment subtree and remaps the cross-references between its members.
package esdlcore

import (
	"github.com/google/uuid"

	"github.com/mapeditor/esdlcore/internal/core"
	"github.com/mapeditor/esdlcore/model"
)

// Clone returns a shallow copy of obj: same class, a copy of every
// attribute value, no references. Multi-valued attributes are copied element
// by element into the new object's own list.
func Clone(obj *model.Object, opts ...CopyOption) *model.Object {
	return cloneObject(obj, newCopyConfig(opts))
}

func cloneObject(obj *model.Object, cfg *copyConfig) *model.Object {
	if obj == nil {
		return nil
	}
	cp := model.New(obj.Class())
	for _, f := range core.GetClassInfo(obj.Class()).Attributes {
		if cfg.ignored[f.Name] {
			continue
		}
		if f.Name == cfg.idAttr && !f.Many {
			_ = cp.SetFeature(f, uuid.NewString())
			continue
		}
		if f.Many {
			dst := cp.ListFeature(f)
			for _, v := range obj.ListFeature(f).Items() {
				_ = dst.Append(core.CopyValue(v))
			}
			continue
		}
		_ = cp.SetFeature(f, core.CopyValue(obj.GetFeature(f)))
	}
	return cp
}
