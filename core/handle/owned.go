// File: core/handle/owned.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Owned is the single owner of a native resource. Ownership moves with Take;
// the resource's Free runs exactly once, on Close or Reset.

package handle

import (
	"fmt"

	"github.com/momentics/hioload-evio/api"
)

// Resource is the constraint on owned kinds: a pointer to E that can free itself.
type Resource[E any] interface {
	*E
	Free() error
}

// noCopy trips go vet's copylocks check when an Owned is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Owned holds one resource or nothing. The zero value is the empty
// placeholder; a handle built by New never starts empty.
type Owned[E any, P Resource[E]] struct {
	_ noCopy
	p P
}

// New takes ownership of p. A nil p is an allocation failure: ErrAlloc, and
// nothing is constructed.
func New[E any, P Resource[E]](p P) (*Owned[E, P], error) {
	if p == nil {
		return nil, allocError[E, P]()
	}
	return &Owned[E, P]{p: p}, nil
}

// adopt wraps the result of a native factory.
func adopt[E any, P Resource[E]](p P, err error) (*Owned[E, P], error) {
	if err != nil {
		return nil, err
	}
	return New[E, P](p)
}

func allocError[E any, P Resource[E]]() error {
	var zero P
	return api.NewError(api.ErrCodeAlloc, fmt.Sprintf("allocate %T", zero)).Wrap(api.ErrAlloc)
}

// Valid reports whether the handle owns a resource.
func (o *Owned[E, P]) Valid() bool { return o != nil && o.p != nil }

// Get borrows the resource; nil when empty. The handle keeps ownership.
func (o *Owned[E, P]) Get() P {
	if o == nil {
		return nil
	}
	return o.p
}

// Take moves the resource into a new handle and leaves o empty.
func (o *Owned[E, P]) Take() *Owned[E, P] {
	out := &Owned[E, P]{p: o.p}
	o.p = nil
	return out
}

// Release gives up ownership without freeing.
func (o *Owned[E, P]) Release() P {
	p := o.p
	o.p = nil
	return p
}

// Reset frees the current resource and adopts p. A nil p is rejected with
// ErrAlloc and leaves the handle unchanged.
func (o *Owned[E, P]) Reset(p P) error {
	if p == nil {
		return allocError[E, P]()
	}
	if p == o.p {
		return nil
	}
	err := o.Close()
	o.p = p
	return err
}

// Close frees the resource once; closing an empty handle is a no-op.
func (o *Owned[E, P]) Close() error {
	if !o.Valid() {
		return nil
	}
	p := o.p
	o.p = nil
	return p.Free()
}
