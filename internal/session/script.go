// Package session drives an ESDL model and its undo history from a YAML
// script.
package session

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Op names a script step.
type Op string

const (
	OpStart   Op = "start"
	OpStep    Op = "step"
	OpStop    Op = "stop"
	OpSet     Op = "set"
	OpUnset   Op = "unset"
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpDelete  Op = "delete"
	OpConnect Op = "connect"
	OpCopy    Op = "copy"
	OpUndo    Op = "undo"
	OpRedo    Op = "redo"
)

// Script describes an energy system and the edits applied to it.
type Script struct {
	Name        string       `yaml:"name"`
	Assets      []AssetSpec  `yaml:"assets"`
	Connections []Connection `yaml:"connections"`
	Steps       []Step       `yaml:"steps"`
}

// AssetSpec adds an asset with one in and one out port, named
// "<name>-in" and "<name>-out", to the top-level area.
type AssetSpec struct {
	Class string `yaml:"class"`
	Name  string `yaml:"name"`
}

// Connection links the out port From to the in port To.
type Connection struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Step is one scripted operation. Objects are referred to by name.
type Step struct {
	Op      Op     `yaml:"op"`
	Target  string `yaml:"target,omitempty"`
	Feature string `yaml:"feature,omitempty"`
	Value   any    `yaml:"value,omitempty"`

	// Label names the transaction opened by start and step.
	Label string `yaml:"label,omitempty"`

	// Combine selects transaction mode for start. Nil uses the configured
	// default.
	Combine *bool `yaml:"combine,omitempty"`

	// Class and Name describe the object created by add on a containment.
	// Name also renames the root of a copy.
	Class string `yaml:"class,omitempty"`
	Name  string `yaml:"name,omitempty"`
}

func (s Step) String() string {
	if s.Target == "" {
		return string(s.Op)
	}
	if s.Feature == "" {
		return fmt.Sprintf("%s %s", s.Op, s.Target)
	}
	return fmt.Sprintf("%s %s.%s", s.Op, s.Target, s.Feature)
}

// ParseScript decodes a script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}
