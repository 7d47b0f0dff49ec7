package esdlcore

import "log/slog"

type copyConfig struct {
	logger       *slog.Logger
	dropExternal bool
	ignored      map[string]bool

	// idAttr names the attribute receiving a fresh identifier in every
	// copy; empty keeps the original value.
	idAttr string
}

func newCopyConfig(opts []CopyOption) *copyConfig {
	cfg := &copyConfig{
		logger:  slog.Default(),
		ignored: make(map[string]bool),
	}
	for _, opt := range opts {
		opt.applyCopy(cfg)
	}
	return cfg
}

// CopyOption configures Clone and DeepCopy.
type CopyOption interface {
	applyCopy(c *copyConfig)
}

type copyOptionFunc func(c *copyConfig)

func (f copyOptionFunc) applyCopy(c *copyConfig) { f(c) }

// WithLogger sets the logger receiving unresolved-reference diagnostics.
func WithLogger(l *slog.Logger) CopyOption {
	return copyOptionFunc(func(c *copyConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// DropExternalReferences leaves references to objects outside the copied
// subtree unset instead of pointing them at the original target.
func DropExternalReferences() CopyOption {
	return copyOptionFunc(func(c *copyConfig) {
		c.dropExternal = true
	})
}

type ignoreFeatureOption string

func (o ignoreFeatureOption) applyCopy(c *copyConfig) {
	c.ignored[string(o)] = true
}

// IgnoreFeature tells DeepCopy to skip every feature with the given name,
// in both the containment and the cross-reference pass.
func IgnoreFeature(name string) CopyOption {
	return ignoreFeatureOption(name)
}

// RegenerateIDs assigns a new random UUID to the named string attribute of
// every copied object, so pasted copies do not share identifiers with their
// originals.
func RegenerateIDs(attr string) CopyOption {
	return copyOptionFunc(func(c *copyConfig) {
		c.idAttr = attr
	})
}
