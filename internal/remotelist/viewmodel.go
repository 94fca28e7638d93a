// Package remotelist holds the view model shared by every list screen of the
// console: fetch a collection, filter it locally, flip boolean fields
// optimistically and delete records, all against a remote Backend.
//
// A ViewModel is safe for use from several goroutines. The lock is only held
// around state access, never across a backend call, so a slow request does
// not block rendering.
package remotelist

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// State is a snapshot of a ViewModel.
type State[T any] struct {
	Items      []T
	SearchTerm string
	Loading    bool
	Err        error
}

// Config configures a ViewModel.
type Config[T any] struct {
	// Name labels errors and log records, e.g. "coupons".
	Name      string
	Backend   Backend[T]
	Accessors Accessors[T]
	// SearchFields are the text fields SetSearchTerm matches against.
	SearchFields []string
	Logger       *slog.Logger
}

// ViewModel is the state and operations behind one remote list.
type ViewModel[T any] struct {
	name    string
	backend Backend[T]
	acc     Accessors[T]
	fields  []string
	log     *slog.Logger

	mu    sync.Mutex
	items []T
	term  string
	err   error

	loads     int
	mutations int

	// loadGen counts started loads; settledGen is the newest one that has
	// finished. A load finishing after a newer one is dropped, whether it
	// succeeded or failed.
	loadGen    uint64
	settledGen uint64

	// toggles holds the outstanding toggles per id+field.
	toggles map[string]*pendingToggle

	closed bool
}

// New returns an empty ViewModel. Call Load to populate it.
func New[T any](cfg Config[T]) *ViewModel[T] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Name != "" {
		log = log.With("resource", cfg.Name)
	}
	return &ViewModel[T]{
		name:    cfg.Name,
		backend: cfg.Backend,
		acc:     cfg.Accessors,
		fields:  slices.Clone(cfg.SearchFields),
		log:     log,
		items:   []T{},
		toggles: make(map[string]*pendingToggle),
	}
}

// Name returns the configured resource name.
func (vm *ViewModel[T]) Name() string { return vm.name }

// Load fetches the collection. On success it replaces the items and clears
// the error. On failure the previous items are kept and the error is set.
func (vm *ViewModel[T]) Load(ctx context.Context) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return vm.fail(FetchFailed, "load", "", "", ErrClosed)
	}
	vm.loadGen++
	gen := vm.loadGen
	vm.loads++
	vm.mu.Unlock()

	items, err := vm.backend.List(ctx)

	vm.mu.Lock()
	vm.loads--
	current := !vm.closed && gen > vm.settledGen
	if current {
		vm.settledGen = gen
	}
	if err != nil {
		ferr := vm.fail(FetchFailed, "load", "", "", err)
		kept := len(vm.items)
		if current {
			vm.err = ferr
		}
		vm.mu.Unlock()
		if current {
			vm.log.Warn("load failed, keeping previous items", "error", err, "items", kept)
		}
		return ferr
	}
	if !current {
		vm.mu.Unlock()
		return nil
	}
	if items == nil {
		items = []T{}
	}
	vm.items = items
	vm.err = nil
	vm.mu.Unlock()
	vm.log.Debug("loaded", "items", len(items))
	return nil
}

// SetSearchTerm sets the local filter. It never touches the network.
func (vm *ViewModel[T]) SetSearchTerm(term string) {
	vm.mu.Lock()
	vm.term = term
	vm.mu.Unlock()
}

// SearchTerm returns the current filter.
func (vm *ViewModel[T]) SearchTerm() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.term
}

// Visible returns the items matching the search term.
func (vm *ViewModel[T]) Visible() []T {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return Filter(vm.items, vm.term, vm.fields, vm.acc.Text)
}

// pendingToggle tracks the toggles of one id+field still waiting for the
// backend. confirmed starts as the value before the first of them and follows
// every write the backend accepts.
type pendingToggle struct {
	outstanding int
	confirmed   bool
	failed      bool
}

// ToggleField writes !current into field of the item with the given id,
// then asks the backend to persist it. Overlapping toggles of the same field
// settle together: once the last one returns, if any of them failed, the
// field is set to the value the backend last accepted, or back to the value
// before the first toggle if it accepted none.
func (vm *ViewModel[T]) ToggleField(ctx context.Context, id, field string, current bool) error {
	next := !current

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return vm.fail(MutationFailed, "toggle", id, field, ErrClosed)
	}
	idx := vm.indexOf(id)
	if idx < 0 {
		vm.mu.Unlock()
		return vm.fail(MutationFailed, "toggle", id, field, ErrNotFound)
	}
	updated, ok := vm.acc.WithFlag(vm.items[idx], field, next)
	if !ok {
		vm.mu.Unlock()
		return vm.fail(MutationFailed, "toggle", id, field, ErrUnknownField)
	}
	vm.items[idx] = updated
	key := id + "\x00" + field
	p := vm.toggles[key]
	if p == nil {
		p = &pendingToggle{confirmed: current}
		vm.toggles[key] = p
	}
	p.outstanding++
	vm.mutations++
	vm.mu.Unlock()

	err := vm.backend.SetField(ctx, id, field, next)

	vm.mu.Lock()
	vm.mutations--
	p.outstanding--
	if err == nil {
		p.confirmed = next
	} else {
		p.failed = true
	}
	settled := p.outstanding == 0
	if settled {
		delete(vm.toggles, key)
	}
	restore, value := settled && p.failed && !vm.closed, p.confirmed
	if restore {
		if i := vm.indexOf(id); i >= 0 {
			vm.items[i], _ = vm.acc.WithFlag(vm.items[i], field, value)
		}
	}
	var merr error
	if err != nil {
		merr = vm.fail(MutationFailed, "toggle", id, field, err)
		if !vm.closed {
			vm.err = merr
		}
	}
	vm.mu.Unlock()

	switch {
	case restore:
		vm.log.Warn("toggle failed, restored last accepted value", "id", id, "field", field, "value", value)
	case err != nil:
		vm.log.Debug("toggle failed, waiting for newer toggle", "id", id, "field", field, "error", err)
	}
	return merr
}

// Remove deletes the item with the given id on the backend and, once that
// succeeds, locally.
func (vm *ViewModel[T]) Remove(ctx context.Context, id string) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return vm.fail(MutationFailed, "remove", id, "", ErrClosed)
	}
	vm.mutations++
	vm.mu.Unlock()

	err := vm.backend.Delete(ctx, id)

	vm.mu.Lock()
	vm.mutations--
	if err != nil {
		merr := vm.fail(MutationFailed, "remove", id, "", err)
		live := !vm.closed
		if live {
			vm.err = merr
		}
		vm.mu.Unlock()
		if live {
			vm.log.Warn("remove failed", "id", id, "error", err)
		}
		return merr
	}
	if !vm.closed {
		vm.items = slices.DeleteFunc(vm.items, func(it T) bool { return vm.acc.Key(it) == id })
	}
	vm.mu.Unlock()
	return nil
}

// Find returns the item with the given id.
func (vm *ViewModel[T]) Find(id string) (T, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if i := vm.indexOf(id); i >= 0 {
		return vm.items[i], true
	}
	var zero T
	return zero, false
}

// Count returns how many items have field set, out of all items.
func (vm *ViewModel[T]) Count(field string) (set, total int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, it := range vm.items {
		if v, ok := vm.acc.Flag(it, field); ok && v {
			set++
		}
	}
	return set, len(vm.items)
}

// Items returns a copy of all loaded items, ignoring the search term.
func (vm *ViewModel[T]) Items() []T {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.items)
}

// Len returns the number of loaded items.
func (vm *ViewModel[T]) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.items)
}

// Loading reports whether a load or a mutation is outstanding.
func (vm *ViewModel[T]) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loads > 0 || vm.mutations > 0
}

// Err returns the last surfaced error.
func (vm *ViewModel[T]) Err() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.err
}

// ClearErr drops the surfaced error, e.g. once it has been shown.
func (vm *ViewModel[T]) ClearErr() {
	vm.mu.Lock()
	vm.err = nil
	vm.mu.Unlock()
}

// State returns a snapshot.
func (vm *ViewModel[T]) State() State[T] {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return State[T]{
		Items:      slices.Clone(vm.items),
		SearchTerm: vm.term,
		Loading:    vm.loads > 0 || vm.mutations > 0,
		Err:        vm.err,
	}
}

// Close discards the view model. Results of calls still in flight are not
// applied and further operations fail with ErrClosed.
func (vm *ViewModel[T]) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
}

// indexOf must be called with mu held.
func (vm *ViewModel[T]) indexOf(id string) int {
	return slices.IndexFunc(vm.items, func(it T) bool { return vm.acc.Key(it) == id })
}

func (vm *ViewModel[T]) fail(kind Kind, op, id, field string, err error) *Error {
	return &Error{Kind: kind, Resource: vm.name, Op: op, ID: id, Field: field, Err: err}
}
