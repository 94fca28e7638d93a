package catalog

import (
	"context"
	"strings"

	"github.com/Makepad-fr/menuadmin/internal/model"
	"github.com/Makepad-fr/menuadmin/internal/remotelist"
)

type view[T model.Entity[T]] struct {
	vm        *remotelist.ViewModel[T]
	title     string
	search    []string
	flags     []string
	canToggle bool
	canDelete bool
}

// New wraps an existing view model, for callers that build their own
// backend.
func New[T model.Entity[T]](vm *remotelist.ViewModel[T], title string) View {
	var zero T
	return &view[T]{
		vm:        vm,
		title:     title,
		search:    zero.TextFields(),
		flags:     zero.FlagFields(),
		canToggle: true,
		canDelete: true,
	}
}

func (v *view[T]) Name() string                   { return v.vm.Name() }
func (v *view[T]) Title() string                  { return v.title }
func (v *view[T]) Load(ctx context.Context) error { return v.vm.Load(ctx) }
func (v *view[T]) SetSearchTerm(term string)      { v.vm.SetSearchTerm(term) }
func (v *view[T]) SearchTerm() string             { return v.vm.SearchTerm() }
func (v *view[T]) FlagNames() []string            { return append([]string(nil), v.flags...) }
func (v *view[T]) Len() int                       { return v.vm.Len() }
func (v *view[T]) Loading() bool                  { return v.vm.Loading() }
func (v *view[T]) Err() error                     { return v.vm.Err() }
func (v *view[T]) ClearErr()                      { v.vm.ClearErr() }
func (v *view[T]) CanToggle() bool                { return v.canToggle }
func (v *view[T]) CanDelete() bool                { return v.canDelete }
func (v *view[T]) Close()                         { v.vm.Close() }

func (v *view[T]) Count(field string) (int, int) { return v.vm.Count(field) }

func (v *view[T]) Rows() []Row {
	items := v.vm.Visible()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, v.row(it))
	}
	return rows
}

func (v *view[T]) Row(id string) (Row, bool) {
	it, ok := v.vm.Find(id)
	if !ok {
		return Row{}, false
	}
	return v.row(it), true
}

func (v *view[T]) Toggle(ctx context.Context, id, field string) error {
	it, ok := v.vm.Find(id)
	if !ok {
		return v.vm.ToggleField(ctx, id, field, false) // reports ErrNotFound
	}
	current, _ := it.Flag(field)
	return v.vm.ToggleField(ctx, id, field, current)
}

func (v *view[T]) Remove(ctx context.Context, id string) error {
	return v.vm.Remove(ctx, id)
}

func (v *view[T]) row(it T) Row {
	r := Row{ID: it.Key(), Title: it.Label()}
	var sub []string
	for _, f := range v.search {
		s, ok := it.Text(f)
		if ok && s != "" && s != r.Title {
			sub = append(sub, s)
		}
	}
	r.Subtitle = strings.Join(sub, " · ")
	for _, f := range v.flags {
		val, _ := it.Flag(f)
		r.Flags = append(r.Flags, Flag{Name: f, Value: val})
	}
	return r
}
