package core

import (
	"sync"

	"github.com/mapeditor/esdlcore/model"
)

// ClassInfo partitions the features of a class the way the copy engine
// walks them.
type ClassInfo struct {
	Attributes   []*model.Feature
	Containments []*model.Feature

	// CrossReferences are the non-containment references that are not the
	// automatic back-reference of a containment.
	CrossReferences []*model.Feature
}

var (
	classCache sync.Map // map[*model.Class]*ClassInfo
)

// GetClassInfo returns the cached feature table of c. Classes must not gain
// features after their first instance is copied.
func GetClassInfo(c *model.Class) *ClassInfo {
	if info, ok := classCache.Load(c); ok {
		return info.(*ClassInfo)
	}

	info := &ClassInfo{}
	for _, f := range c.Features() {
		switch {
		case f.Kind == model.Attribute:
			info.Attributes = append(info.Attributes, f)
		case f.Containment:
			info.Containments = append(info.Containments, f)
		case !f.IsContainer():
			info.CrossReferences = append(info.CrossReferences, f)
		}
	}

	actual, _ := classCache.LoadOrStore(c, info)
	return actual.(*ClassInfo)
}
