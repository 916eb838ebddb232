package bench

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Registry holds the registered cases of a process in registration order.
//
// It is populated during a single initialization phase. Seal freezes it; after that,
// Register fails with ErrSealed and all reads are lock-free.
type Registry struct {
	mu     sync.Mutex
	cases  []*Case
	index  map[string]struct{}
	sealed atomic.Bool
	errs   []error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]struct{}{}}
}

// Register adds a copy of c to the registry. Failed registrations are also recorded and
// reported by Err.
func (r *Registry) Register(c Case) error {
	err := r.register(c)
	if err != nil {
		r.mu.Lock()
		r.errs = append(r.errs, err)
		r.mu.Unlock()
	}
	return err
}

// Err returns the errors of every failed registration, or nil.
func (r *Registry) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

func (r *Registry) register(c Case) error {
	if err := c.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return errors.Wrapf(ErrSealed, "cannot register %s", c.FullName())
	}

	key := c.Identity().Key()
	if _, ok := r.index[key]; ok {
		if id := c.Params.ID(); id != "" {
			return errors.Wrapf(ErrDuplicateCase, "%s (%s)", c.FullName(), id)
		}
		return errors.Wrapf(ErrDuplicateCase, "%s", c.FullName())
	}

	r.index[key] = struct{}{}
	r.cases = append(r.cases, c.clone())
	return nil
}

// RegisterEach registers one case per combination of the axes, appended to c's own
// parameters. It stops at the first error.
func (r *Registry) RegisterEach(c Case, axes ...Axis) error {
	combinations := Product(axes...)
	for combination := range combinations.All {
		variant := c
		variant.Params = append(c.Params.clone(), combination...)
		if err := r.Register(variant); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error. It is meant for registration in
// init functions and main, where a registration error is a programming error.
func (r *Registry) MustRegister(c Case) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Cases returns the registered cases in registration order. The returned slice is a
// copy; the cases themselves must be treated as read-only.
func (r *Registry) Cases() []*Case {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return append([]*Case(nil), r.cases...)
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return len(r.cases)
}
