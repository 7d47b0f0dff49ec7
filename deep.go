package esdlcore

import (
	"github.com/mapeditor/esdlcore/internal/core"
	"github.com/mapeditor/esdlcore/model"
)

// UnresolvedReference is a cross-reference from inside a copied subtree to
// an object outside of it.
type UnresolvedReference struct {
	Owner   *model.Object
	Feature *model.Feature
	Target  *model.Object

	// Dropped reports that the copy was left without the reference.
	Dropped bool
}

// Report describes the outcome of a deep copy.
type Report struct {
	// Copies maps every original object to its copy.
	Copies map[*model.Object]*model.Object

	// Unresolved lists the references whose target was not copied. Owner
	// is the original object.
	Unresolved []UnresolvedReference
}

// DeepCopy copies the containment subtree of root.
//
// References between members of the subtree point at the corresponding
// copies, in the order of the original lists. References leaving the
// subtree keep pointing at the original target (or are dropped with
// DropExternalReferences) and are logged. They are always dropped when the
// target's single-valued opposite already points back at someone, since
// linking the copy would steal that back-reference from the original.
// Targets living in another resource are never remapped, even when a copy
// of them exists elsewhere.
func DeepCopy(root *model.Object, opts ...CopyOption) *model.Object {
	cp, _ := DeepCopyWithReport(root, opts...)
	return cp
}

// DeepCopyWithReport is DeepCopy that also returns the copy report.
func DeepCopyWithReport(root *model.Object, opts ...CopyOption) (*model.Object, Report) {
	if root == nil {
		return nil, Report{}
	}
	c := newCopier(opts)
	cp := c.copy(root)
	c.resolve()
	return cp, c.report()
}

// DeepCopyAll copies several subtrees with one shared identity map, so
// references between them are remapped as well.
func DeepCopyAll(roots []*model.Object, opts ...CopyOption) ([]*model.Object, Report) {
	c := newCopier(opts)
	out := make([]*model.Object, len(roots))
	for i, root := range roots {
		if root != nil {
			out[i] = c.copy(root)
		}
	}
	c.resolve()
	return out, c.report()
}

type copier struct {
	cfg *copyConfig

	memo  map[*model.Object]*model.Object
	order []*model.Object

	unresolved []UnresolvedReference
}

func newCopier(opts []CopyOption) *copier {
	return &copier{
		cfg:  newCopyConfig(opts),
		memo: make(map[*model.Object]*model.Object),
	}
}

func (c *copier) copy(obj *model.Object) *model.Object {
	// If the object was already copied, return its copy.
	if cp, ok := c.memo[obj]; ok {
		return cp
	}

	// Register before recursing so cycles terminate.
	cp := cloneObject(obj, c.cfg)
	c.memo[obj] = cp
	c.order = append(c.order, obj)

	for _, f := range core.GetClassInfo(obj.Class()).Containments {
		if c.cfg.ignored[f.Name] {
			continue
		}
		if f.Many {
			dst := cp.ListFeature(f)
			for _, child := range obj.ListFeature(f).Objects() {
				_ = dst.Append(c.copy(child))
			}
			continue
		}
		if child, ok := obj.GetFeature(f).(*model.Object); ok {
			_ = cp.SetFeature(f, c.copy(child))
		}
	}

	return cp
}

// resolve links the cross-references of every copied object.
func (c *copier) resolve() {
	for _, orig := range c.order {
		cp := c.memo[orig]
		for _, f := range core.GetClassInfo(orig.Class()).CrossReferences {
			if c.cfg.ignored[f.Name] {
				continue
			}
			if f.Many {
				dst := cp.ListFeature(f)
				for _, target := range orig.ListFeature(f).Objects() {
					if mapped, ok := c.lookup(orig, f, target); ok {
						_ = dst.Append(mapped)
					}
				}
				continue
			}
			target, ok := orig.GetFeature(f).(*model.Object)
			if !ok {
				continue
			}
			if mapped, ok := c.lookup(orig, f, target); ok {
				_ = cp.SetFeature(f, mapped)
			}
		}
	}
	c.reorder()
}

// reorder restores the original order of every many-valued cross-reference.
// Opposite mirroring may have filled a copied list before its own turn.
func (c *copier) reorder() {
	for _, orig := range c.order {
		cp := c.memo[orig]
		for _, f := range core.GetClassInfo(orig.Class()).CrossReferences {
			if !f.Many || c.cfg.ignored[f.Name] {
				continue
			}
			dst := cp.ListFeature(f)
			i := 0
			for _, target := range orig.ListFeature(f).Objects() {
				mapped, ok := c.memo[target]
				if !ok {
					mapped = target
				}
				j := dst.Index(mapped)
				if j < 0 {
					continue
				}
				if j != i {
					_ = dst.Move(j, i)
				}
				i++
			}
		}
	}
}

func (c *copier) lookup(owner *model.Object, f *model.Feature, target *model.Object) (*model.Object, bool) {
	if cp, ok := c.memo[target]; ok {
		return cp, true
	}
	drop := c.cfg.dropExternal || backReferenced(target, f)
	c.unresolved = append(c.unresolved, UnresolvedReference{Owner: owner, Feature: f, Target: target, Dropped: drop})
	c.cfg.logger.Warn("deepcopy: reference target is outside the copied subtree",
		"owner", owner.String(),
		"feature", f.String(),
		"target", target.String(),
		"dropped", drop)
	if drop {
		return nil, false
	}
	return target, true
}

// backReferenced reports whether target's single-valued opposite of f is
// already taken.
func backReferenced(target *model.Object, f *model.Feature) bool {
	g := f.OppositeFeature()
	if g == nil || g.Many {
		return false
	}
	back, _ := target.GetFeature(g).(*model.Object)
	return back != nil
}

func (c *copier) report() Report {
	return Report{Copies: c.memo, Unresolved: c.unresolved}
}
