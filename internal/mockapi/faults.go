package mockapi

import (
	"net/http"
	"sync"
)

// Ops a failure can be injected into.
const (
	OpList   = "list"
	OpToggle = "toggle"
	OpDelete = "delete"
)

type faultKey struct{ resource, op string }

// faults makes chosen operations fail with a fixed status, to exercise
// client-side rollback.
type faults struct {
	mu   sync.Mutex
	byOp map[faultKey]int
}

func (f *faults) set(resource, op string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byOp == nil {
		f.byOp = make(map[faultKey]int)
	}
	if code == 0 {
		code = http.StatusInternalServerError
	}
	f.byOp[faultKey{resource, op}] = code
}

func (f *faults) clear() {
	f.mu.Lock()
	f.byOp = nil
	f.mu.Unlock()
}

func (f *faults) get(resource, op string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.byOp[faultKey{resource, op}]
	return code, ok
}
