package remotelist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

type fakeBackend struct {
	list func(ctx context.Context) ([]model.MenuItem, error)
	set  func(ctx context.Context, id, field string, value bool) error
	del  func(ctx context.Context, id string) error
}

func (f *fakeBackend) List(ctx context.Context) ([]model.MenuItem, error) {
	return f.list(ctx)
}

func (f *fakeBackend) SetField(ctx context.Context, id, field string, value bool) error {
	if f.set == nil {
		return nil
	}
	return f.set(ctx, id, field, value)
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

func margherita() []model.MenuItem {
	return []model.MenuItem{{ID: "1", Name: "Margherita", OnHomePage: false}}
}

func newVM(t *testing.T, b *fakeBackend) *ViewModel[model.MenuItem] {
	t.Helper()
	return New(Config[model.MenuItem]{
		Name:         "items",
		Backend:      b,
		Accessors:    EntityAccessors[model.MenuItem](),
		SearchFields: []string{"name", "category"},
	})
}

func loaded(t *testing.T, b *fakeBackend, items []model.MenuItem) *ViewModel[model.MenuItem] {
	t.Helper()
	b.list = func(context.Context) ([]model.MenuItem, error) { return items, nil }
	vm := newVM(t, b)
	require.NoError(t, vm.Load(context.Background()))
	return vm
}

func TestLoadReplacesItems(t *testing.T) {
	vm := loaded(t, &fakeBackend{}, margherita())

	st := vm.State()
	assert.Equal(t, margherita(), st.Items)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestLoadEmptyResponse(t *testing.T) {
	vm := loaded(t, &fakeBackend{}, nil)

	assert.NotNil(t, vm.Items())
	assert.Empty(t, vm.Items())
	assert.Empty(t, vm.Visible())
}

func TestLoadFailureKeepsStaleItems(t *testing.T) {
	b := &fakeBackend{}
	vm := loaded(t, b, margherita())

	b.list = func(context.Context) ([]model.MenuItem, error) { return nil, errors.New("connection refused") }
	err := vm.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.NotErrorIs(t, err, ErrMutationFailed)
	assert.Equal(t, margherita(), vm.Items())
	assert.ErrorIs(t, vm.Err(), ErrFetchFailed)

	b.list = func(context.Context) ([]model.MenuItem, error) { return margherita(), nil }
	require.NoError(t, vm.Load(context.Background()))
	assert.NoError(t, vm.Err(), "successful load clears the error")
}

func TestSearchIsLocalAndCaseInsensitive(t *testing.T) {
	calls := 0
	b := &fakeBackend{}
	vm := loaded(t, b, []model.MenuItem{
		{ID: "1", Name: "Margherita", Category: "Pizza"},
		{ID: "2", Name: "Caesar Salad", Category: "Salads"},
		{ID: "3", Name: "Pepperoni", Category: "pizza"},
	})
	b.list = func(context.Context) ([]model.MenuItem, error) {
		calls++
		return nil, nil
	}

	vm.SetSearchTerm("PIZZA")
	got := vm.Visible()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Key())
	assert.Equal(t, "3", got[1].Key())
	assert.Len(t, vm.Items(), 3, "filtering never removes items")
	assert.Zero(t, calls)

	vm.SetSearchTerm("")
	assert.Len(t, vm.Visible(), 3)
}

func TestVisibleIsSubsetMatchingTerm(t *testing.T) {
	faker := gofakeit.New(7)
	items := make([]model.MenuItem, 60)
	for i := range items {
		items[i] = model.MenuItem{
			ID:       model.ID(faker.UUID()),
			Name:     faker.Dessert(),
			Category: faker.Word(),
		}
	}
	vm := loaded(t, &fakeBackend{}, items)

	for range 40 {
		term := faker.Letter()
		if faker.Bool() {
			term = strings.ToUpper(term) + faker.Letter()
		}
		vm.SetSearchTerm(term)

		for _, v := range vm.Visible() {
			assert.Contains(t, items, v)
			name, cat := strings.ToLower(v.Name), strings.ToLower(v.Category)
			needle := strings.ToLower(term)
			assert.True(t, strings.Contains(name, needle) || strings.Contains(cat, needle),
				"%q does not match %q", v.Name, term)
		}
	}
}

func TestToggleSuccess(t *testing.T) {
	var gotField string
	var gotValue bool
	b := &fakeBackend{set: func(_ context.Context, id, field string, value bool) error {
		gotField, gotValue = field, value
		return nil
	}}
	vm := loaded(t, b, margherita())

	require.NoError(t, vm.ToggleField(context.Background(), "1", "on_homePage", false))

	assert.True(t, vm.Items()[0].OnHomePage)
	assert.Equal(t, "on_homePage", gotField)
	assert.True(t, gotValue)
	assert.NoError(t, vm.Err())
}

func TestToggleFailureRollsBack(t *testing.T) {
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		return errors.New("500 internal server error")
	}}
	vm := loaded(t, b, margherita())

	err := vm.ToggleField(context.Background(), "1", "on_homePage", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMutationFailed)
	assert.False(t, vm.Items()[0].OnHomePage)
	assert.ErrorIs(t, vm.Err(), ErrMutationFailed)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "1", verr.ID)
	assert.Equal(t, "on_homePage", verr.Field)
}

func TestToggleIsOptimistic(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		close(started)
		<-release
		return nil
	}}
	vm := loaded(t, b, margherita())

	done := make(chan error, 1)
	go func() { done <- vm.ToggleField(context.Background(), "1", "on_homePage", false) }()

	<-started
	assert.True(t, vm.Items()[0].OnHomePage, "value applied before the server answers")
	assert.True(t, vm.State().Loading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, vm.State().Loading)
}

func TestToggleRejectsUnknownTargets(t *testing.T) {
	called := false
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		called = true
		return nil
	}}
	vm := loaded(t, b, margherita())

	assert.ErrorIs(t, vm.ToggleField(context.Background(), "404", "on_homePage", false), ErrNotFound)
	assert.ErrorIs(t, vm.ToggleField(context.Background(), "1", "price", false), ErrUnknownField)
	assert.False(t, called)
	assert.Equal(t, margherita(), vm.Items())
}

func TestStaleToggleFailureDoesNotRollBackNewerToggle(t *testing.T) {
	firstStarted := make(chan struct{})
	failFirst := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-failFirst
			return errors.New("timeout")
		}
		return nil
	}}
	vm := loaded(t, b, margherita())

	done := make(chan error, 1)
	go func() { done <- vm.ToggleField(context.Background(), "1", "on_homePage", false) }()
	<-firstStarted

	// The user flips it back before the first request fails.
	require.NoError(t, vm.ToggleField(context.Background(), "1", "on_homePage", true))
	assert.False(t, vm.Items()[0].OnHomePage)

	close(failFirst)
	assert.ErrorIs(t, <-done, ErrMutationFailed)
	assert.False(t, vm.Items()[0].OnHomePage, "newer toggle owns the value")
}

func TestOverlappingToggleFailuresRestoreOriginalValue(t *testing.T) {
	firstStarted := make(chan struct{})
	failFirst := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-failFirst
		}
		return errors.New("500 internal server error")
	}}
	vm := loaded(t, b, margherita())

	done := make(chan error, 1)
	go func() { done <- vm.ToggleField(context.Background(), "1", "on_homePage", false) }()
	<-firstStarted

	assert.ErrorIs(t, vm.ToggleField(context.Background(), "1", "on_homePage", true), ErrMutationFailed)
	assert.False(t, vm.Items()[0].OnHomePage)

	close(failFirst)
	assert.ErrorIs(t, <-done, ErrMutationFailed)
	assert.False(t, vm.Items()[0].OnHomePage, "neither write reached the server")
	assert.ErrorIs(t, vm.Err(), ErrMutationFailed)
}

func TestOverlappingTogglesKeepAcceptedWrite(t *testing.T) {
	firstStarted := make(chan struct{})
	finishFirst := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	b := &fakeBackend{set: func(context.Context, string, string, bool) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-finishFirst
			return nil
		}
		return errors.New("timeout")
	}}
	vm := loaded(t, b, margherita())

	done := make(chan error, 1)
	go func() { done <- vm.ToggleField(context.Background(), "1", "on_homePage", false) }()
	<-firstStarted

	assert.ErrorIs(t, vm.ToggleField(context.Background(), "1", "on_homePage", true), ErrMutationFailed)
	assert.False(t, vm.Items()[0].OnHomePage, "first toggle still pending")

	close(finishFirst)
	require.NoError(t, <-done)
	assert.True(t, vm.Items()[0].OnHomePage, "the server holds the first write")
}

func TestTogglesOnDistinctIDsAreIndependent(t *testing.T) {
	b := &fakeBackend{set: func(_ context.Context, id, _ string, _ bool) error {
		if id == "2" {
			return errors.New("nope")
		}
		return nil
	}}
	vm := loaded(t, b, []model.MenuItem{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}})

	var wg sync.WaitGroup
	for _, id := range []string{"1", "2", "3"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = vm.ToggleField(context.Background(), id, "is_popular", false)
		}()
	}
	wg.Wait()

	items := vm.Items()
	assert.True(t, items[0].Popular)
	assert.False(t, items[1].Popular)
	assert.True(t, items[2].Popular)
}

func TestRemove(t *testing.T) {
	b := &fakeBackend{}
	vm := loaded(t, b, []model.MenuItem{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}})

	require.NoError(t, vm.Remove(context.Background(), "1"))
	_, ok := vm.Find("1")
	assert.False(t, ok)
	assert.Equal(t, 1, vm.Len())

	b.del = func(context.Context, string) error { return errors.New("forbidden") }
	before := vm.Items()
	err := vm.Remove(context.Background(), "2")
	assert.ErrorIs(t, err, ErrMutationFailed)
	assert.Equal(t, before, vm.Items())
	assert.ErrorIs(t, vm.Err(), ErrMutationFailed)

	vm.ClearErr()
	assert.NoError(t, vm.Err())
}

func TestClosedViewModelIgnoresLateResults(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{}
	vm := loaded(t, b, margherita())
	b.list = func(context.Context) ([]model.MenuItem, error) {
		close(started)
		<-release
		return []model.MenuItem{{ID: "9", Name: "Late"}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- vm.Load(context.Background()) }()
	<-started
	vm.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, margherita(), vm.Items())
	assert.ErrorIs(t, vm.Load(context.Background()), ErrClosed)
	assert.ErrorIs(t, vm.ToggleField(context.Background(), "1", "on_homePage", false), ErrClosed)
	assert.ErrorIs(t, vm.Remove(context.Background(), "1"), ErrClosed)
}

func TestOlderLoadDoesNotOverwriteNewer(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	b := &fakeBackend{list: func(context.Context) ([]model.MenuItem, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(slowStarted)
			<-releaseSlow
			return []model.MenuItem{{ID: "old"}}, nil
		}
		return []model.MenuItem{{ID: "new"}}, nil
	}}
	vm := newVM(t, b)

	done := make(chan error, 1)
	go func() { done <- vm.Load(context.Background()) }()
	<-slowStarted
	require.NoError(t, vm.Load(context.Background()))
	close(releaseSlow)
	require.NoError(t, <-done)

	require.Len(t, vm.Items(), 1)
	assert.Equal(t, "new", vm.Items()[0].Key())
}

func TestOlderLoadDoesNotOverrideNewerFailure(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	b := &fakeBackend{}
	vm := loaded(t, b, margherita())
	b.list = func(context.Context) ([]model.MenuItem, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(slowStarted)
			<-releaseSlow
			return []model.MenuItem{{ID: "old"}}, nil
		}
		return nil, errors.New("502 bad gateway")
	}

	done := make(chan error, 1)
	go func() { done <- vm.Load(context.Background()) }()
	<-slowStarted
	assert.ErrorIs(t, vm.Load(context.Background()), ErrFetchFailed)
	close(releaseSlow)
	require.NoError(t, <-done)

	assert.Equal(t, margherita(), vm.Items())
	assert.ErrorIs(t, vm.Err(), ErrFetchFailed)
}

// reentrantHandler reads the view model from inside Handle, the way a UI
// handler rendering the record would.
type reentrantHandler struct {
	slog.Handler
	read func()
}

func (h reentrantHandler) Handle(ctx context.Context, r slog.Record) error {
	h.read()
	return nil
}

func (h reentrantHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return reentrantHandler{Handler: h.Handler.WithAttrs(attrs), read: h.read}
}

func TestLoggingDoesNotHoldTheLock(t *testing.T) {
	var vm *ViewModel[model.MenuItem]
	b := &fakeBackend{
		list: func(context.Context) ([]model.MenuItem, error) { return margherita(), nil },
		set:  func(context.Context, string, string, bool) error { return errors.New("500") },
		del:  func(context.Context, string) error { return errors.New("403") },
	}
	h := reentrantHandler{
		Handler: slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}),
		read:    func() { _ = vm.Loading(); _ = vm.Len() },
	}
	vm = New(Config[model.MenuItem]{
		Name:      "items",
		Backend:   b,
		Accessors: EntityAccessors[model.MenuItem](),
		Logger:    slog.New(h),
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = vm.Load(context.Background())
		_ = vm.ToggleField(context.Background(), "1", "on_homePage", false)
		_ = vm.Remove(context.Background(), "1")
		b.list = func(context.Context) ([]model.MenuItem, error) { return nil, errors.New("down") }
		_ = vm.Load(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("log handler blocked on the view model lock")
	}
}

func TestCount(t *testing.T) {
	vm := loaded(t, &fakeBackend{}, []model.MenuItem{
		{ID: "1", Available: true},
		{ID: "2", Available: false},
		{ID: "3", Available: true},
	})
	set, total := vm.Count("is_available")
	assert.Equal(t, 2, set)
	assert.Equal(t, 3, total)
}
