// Package catalog maps resource names ("items", "coupons", ...) to typed
// view models and hides the type parameter behind View, so the CLI and the
// TUI can drive any list the same way.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Makepad-fr/menuadmin/internal/api"
	"github.com/Makepad-fr/menuadmin/internal/config"
	"github.com/Makepad-fr/menuadmin/internal/model"
	"github.com/Makepad-fr/menuadmin/internal/remotelist"
)

// Flag is one boolean field of a row.
type Flag struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// Row is the display form of one record.
type Row struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Flags    []Flag `json:"flags"`
}

// Flag returns the value of the named flag.
func (r Row) Flag(name string) (bool, bool) {
	for _, f := range r.Flags {
		if f.Name == name {
			return f.Value, true
		}
	}
	return false, false
}

// View is a remote list with its record type erased.
type View interface {
	Name() string
	Title() string
	Load(ctx context.Context) error
	SetSearchTerm(term string)
	SearchTerm() string
	// Rows returns the rows matching the search term.
	Rows() []Row
	Row(id string) (Row, bool)
	FlagNames() []string
	// Toggle flips field of the record with the given id, starting from
	// the value currently shown.
	Toggle(ctx context.Context, id, field string) error
	Remove(ctx context.Context, id string) error
	Count(field string) (set, total int)
	Len() int
	Loading() bool
	Err() error
	ClearErr()
	CanToggle() bool
	CanDelete() bool
	Close()
}

// Options tune Open.
type Options struct {
	// Params fill {name} placeholders in endpoint paths.
	Params map[string]string
	Logger *slog.Logger
}

type opener func(name, title string, res config.Resource, c *api.Client, opt Options) (View, error)

type kind struct {
	title string
	open  opener
}

var kinds = map[string]kind{
	"items":            {"Menu items", open[model.MenuItem]},
	"restaurants":      {"Restaurants", open[model.Restaurant]},
	"restaurant-items": {"Restaurant menu", open[model.MenuItem]},
	"customers":        {"Customers", open[model.Customer]},
	"coupons":          {"Coupons", open[model.Coupon]},
	"refunds":          {"Refunds", open[model.Refund]},
	"legal":            {"Legal pages", open[model.LegalPage]},
}

// Names returns every resource name with a record type, sorted.
func Names() []string {
	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Title returns the display title of a resource.
func Title(name string) string {
	if k, ok := kinds[name]; ok {
		return k.title
	}
	return name
}

// Params returns the {placeholders} a resource path needs.
func Params(cfg *config.Config, name string) []string {
	var out []string
	for _, m := range paramRe.FindAllStringSubmatch(cfg.Resources[name].Path, -1) {
		out = append(out, m[1])
	}
	return out
}

// Open builds the view for a configured resource.
func Open(name string, cfg *config.Config, c *api.Client, opt Options) (View, error) {
	k, ok := kinds[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	res, ok := cfg.Resources[name]
	if !ok {
		return nil, fmt.Errorf("resource %q is not configured", name)
	}
	return k.open(name, k.title, res, c, opt)
}

// LoadAll loads several views concurrently. Every view is attempted; the
// first error is returned.
func LoadAll(ctx context.Context, views ...View) error {
	var g errgroup.Group
	for _, v := range views {
		g.Go(func() error { return v.Load(ctx) })
	}
	return g.Wait()
}

var paramRe = regexp.MustCompile(`\{([A-Za-z0-9_-]+)\}`)

func expand(path string, params map[string]string) (string, error) {
	var missing []string
	out := paramRe.ReplaceAllStringFunc(path, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := params[key]
		if !ok || v == "" {
			missing = append(missing, key)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%s needs --%s", path, strings.Join(missing, ", --"))
	}
	return out, nil
}

func open[T model.Entity[T]](name, title string, res config.Resource, c *api.Client, opt Options) (View, error) {
	path, err := expand(res.Path, opt.Params)
	if err != nil {
		return nil, err
	}
	backend, err := api.NewResource[T](c, name, api.Endpoint{
		ListPath:   path,
		Extract:    res.Extract,
		TogglePath: res.TogglePath,
		DeletePath: res.DeletePath,
	})
	if err != nil {
		return nil, err
	}

	var zero T
	search := res.Search
	if len(search) == 0 {
		search = zero.TextFields()
	}
	flags := res.Flags
	if len(flags) == 0 {
		flags = zero.FlagFields()
	}
	for _, f := range flags {
		if _, ok := zero.Flag(f); !ok {
			return nil, fmt.Errorf("%s: %q is not a boolean field (have %s)", name, f, strings.Join(zero.FlagFields(), ", "))
		}
	}

	vm := remotelist.New(remotelist.Config[T]{
		Name:         name,
		Backend:      backend,
		Accessors:    remotelist.EntityAccessors[T](),
		SearchFields: search,
		Logger:       opt.Logger,
	})
	return &view[T]{
		vm:        vm,
		title:     title,
		search:    search,
		flags:     flags,
		canToggle: res.TogglePath != "",
		canDelete: res.DeletePath != "",
	}, nil
}
