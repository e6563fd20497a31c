package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/fsm"
)

// Descriptor is the immutable definition of a model type: qualified name,
// attribute schema, state machines, and TTL. It is built once at
// model-definition time; nothing mutates it afterwards, so it is safe for
// concurrent use across any number of Models and Records.
type Descriptor struct {
	name      string
	namespace string
	schema    *attr.Schema
	machines  *fsm.Registry
	expiresIn time.Duration
}

// DescriptorOption configures a Descriptor during construction.
type DescriptorOption func(*Descriptor) error

// WithExpiresIn sets the model's TTL. Every successful persist applies d
// to the storage key, so continued activity keeps a record alive. A
// non-positive duration means records never expire.
func WithExpiresIn(d time.Duration) DescriptorOption {
	return func(desc *Descriptor) error {
		desc.expiresIn = d
		return nil
	}
}

// WithMachine registers a state machine on the model. The machine must
// validate and must govern a declared string attribute.
func WithMachine(m fsm.Machine) DescriptorOption {
	return func(desc *Descriptor) error {
		kind, ok := desc.schema.Kind(m.Attribute)
		if !ok {
			return fmt.Errorf("machine %q: governed attribute %q is not declared", m.Name, m.Attribute)
		}
		if kind != attr.KindString {
			return fmt.Errorf("machine %q: governed attribute %q must be a string, is %v", m.Name, m.Attribute, kind)
		}
		return desc.machines.Add(m)
	}
}

// NewDescriptor creates a model-type definition. The qualified name uses
// dot-separated segments ("myapp.Task"); the storage namespace is derived
// from it (see Namespace).
func NewDescriptor(qualified string, schema *attr.Schema, opts ...DescriptorOption) (*Descriptor, error) {
	if qualified == "" {
		return nil, fmt.Errorf("descriptor: qualified name must not be empty")
	}
	if schema == nil || schema.Len() == 0 {
		return nil, fmt.Errorf("descriptor %q: at least one attribute must be declared", qualified)
	}

	d := &Descriptor{
		name:      qualified,
		namespace: Namespace(qualified),
		schema:    schema,
		machines:  fsm.NewRegistry(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", qualified, err)
		}
	}
	return d, nil
}

// Name returns the qualified model name.
func (d *Descriptor) Name() string { return d.name }

// ShortName returns the final segment of the qualified name.
func (d *Descriptor) ShortName() string {
	if i := strings.LastIndex(d.name, "."); i >= 0 {
		return d.name[i+1:]
	}
	return d.name
}

// Namespace returns the derived storage namespace.
func (d *Descriptor) Namespace() string { return d.namespace }

// Schema returns the attribute schema.
func (d *Descriptor) Schema() *attr.Schema { return d.schema }

// Machines returns the state-machine registry.
func (d *Descriptor) Machines() *fsm.Registry { return d.machines }

// ExpiresIn returns the configured TTL; non-positive means never expires.
func (d *Descriptor) ExpiresIn() time.Duration { return d.expiresIn }
