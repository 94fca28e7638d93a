package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Makepad-fr/menuadmin/internal/catalog"
	"github.com/Makepad-fr/menuadmin/internal/tui"
	"github.com/Makepad-fr/menuadmin/internal/ui"
)

func (r *runner) resources() error {
	t := ui.Current()
	lines := []string{t.Title.Render("Resources"), ""}
	for _, name := range r.cfg.ResourceNames() {
		res := r.cfg.Resources[name]
		ops := []string{"list"}
		if res.TogglePath != "" {
			ops = append(ops, "toggle")
		}
		if res.DeletePath != "" {
			ops = append(ops, "rm")
		}
		lines = append(lines, fmt.Sprintf("%-17s %-30s %s",
			t.Accent.Render(name), res.Path, t.Muted.Render(strings.Join(ops, ","))))
	}
	r.p.Panel(lines...)
	return nil
}

func (r *runner) list(ctx context.Context, args []string) error {
	fs, params := flags("ls")
	search := fs.String("search", "", "case-insensitive filter on the text fields")
	group := fs.String("group", "", "split rows by a boolean field")
	asJSON := fs.Bool("json", false, "print rows as JSON")
	if err := fs.Parse(args); err != nil {
		return usagef("ls: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("usage: menuadmin ls <resource> [--search s] [--group field] [--json]")
	}
	v, err := r.open(fs.Arg(0), values(params), nil)
	if err != nil {
		return err
	}
	defer v.Close()
	if *group != "" && !slices.Contains(v.FlagNames(), *group) {
		return usagef("ls: %s has no field %q (have %s)", v.Name(), *group, strings.Join(v.FlagNames(), ", "))
	}

	if err := v.Load(ctx); err != nil {
		return err
	}
	v.SetSearchTerm(*search)
	rows := v.Rows()

	if *asJSON {
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		r.p.Println(string(b))
		return nil
	}

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d", t.Title.Render(v.Title()), t.Accent.Render("Total"), v.Len())
	if *search != "" {
		header += t.Muted.Render(fmt.Sprintf("  / %s (%d shown)", *search, len(rows)))
	}
	lines := []string{header}
	for _, f := range v.FlagNames() {
		set, total := v.Count(f)
		lines = append(lines, fmt.Sprintf("%-14s %s", f, t.Muted.Render(ui.ProgressBar(set, total, 20))))
	}
	lines = append(lines, "")

	if *group == "" {
		lines = append(lines, rowLines(rows)...)
	} else {
		var on, off []catalog.Row
		for _, row := range rows {
			if val, _ := row.Flag(*group); val {
				on = append(on, row)
			} else {
				off = append(off, row)
			}
		}
		lines = append(lines, t.Success.Render(*group))
		lines = append(lines, rowLines(on)...)
		lines = append(lines, "", t.Pending.Render("not "+*group))
		lines = append(lines, rowLines(off)...)
	}
	if len(rows) == 0 {
		lines = append(lines, t.Muted.Render("(nothing to show)"))
	}
	r.p.Panel(lines...)
	return nil
}

func rowLines(rows []catalog.Row) []string {
	t := ui.Current()
	width := 2
	for _, row := range rows {
		width = max(width, len(row.ID))
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		boxes := make([]string, len(row.Flags))
		for i, f := range row.Flags {
			boxes[i] = ui.Box(f.Value)
		}
		line := fmt.Sprintf("%-*s %s %s", width, row.ID, strings.Join(boxes, " "), row.Title)
		if row.Subtitle != "" {
			line += "  " + t.Muted.Render(row.Subtitle)
		}
		out = append(out, line)
	}
	return out
}

func (r *runner) toggle(ctx context.Context, args []string) error {
	fs, params := flags("toggle")
	if err := fs.Parse(args); err != nil {
		return usagef("toggle: %v", err)
	}
	if fs.NArg() != 3 {
		return usagef("usage: menuadmin toggle <resource> <id> <field>")
	}
	name, id, field := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	v, err := r.open(name, values(params), nil)
	if err != nil {
		return err
	}
	defer v.Close()
	if !slices.Contains(v.FlagNames(), field) {
		return usagef("toggle: %s has no field %q (have %s)", name, field, strings.Join(v.FlagNames(), ", "))
	}
	if !v.CanToggle() {
		return fmt.Errorf("toggle: %s has no toggle endpoint", name)
	}
	if err := v.Load(ctx); err != nil {
		return err
	}
	row, ok := v.Row(id)
	if !ok {
		r.p.Hint("Hint: run `menuadmin ls " + name + "` to see valid ids")
		return fmt.Errorf("%s: no record with id %s", name, id)
	}
	if err := v.Toggle(ctx, id, field); err != nil {
		return err
	}
	before, _ := row.Flag(field)
	r.p.OK(fmt.Sprintf("%s %s: %s %t -> %t", name, row.Title, field, before, !before))
	return nil
}

func (r *runner) remove(ctx context.Context, args []string) error {
	fs, params := flags("rm")
	if err := fs.Parse(args); err != nil {
		return usagef("rm: %v", err)
	}
	if fs.NArg() != 2 {
		return usagef("usage: menuadmin rm <resource> <id>")
	}
	name, id := fs.Arg(0), fs.Arg(1)
	v, err := r.open(name, values(params), nil)
	if err != nil {
		return err
	}
	defer v.Close()
	if !v.CanDelete() {
		return fmt.Errorf("rm: %s has no delete endpoint", name)
	}
	if err := v.Remove(ctx, id); err != nil {
		return err
	}
	r.p.OK(fmt.Sprintf("removed %s %s", name, id))
	return nil
}

// summaryResources are the lists that need no parameters.
func (r *runner) summaryResources() []string {
	var out []string
	for _, name := range r.cfg.ResourceNames() {
		if len(catalog.Params(r.cfg, name)) == 0 {
			out = append(out, name)
		}
	}
	return out
}

func (r *runner) summary(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: menuadmin summary")
	}
	var views []catalog.View
	for _, name := range r.summaryResources() {
		v, err := r.open(name, nil, nil)
		if err != nil {
			r.log.Warn("skipping resource", "resource", name, "error", err)
			continue
		}
		defer v.Close()
		views = append(views, v)
	}
	loadErr := catalog.LoadAll(ctx, views...)

	t := ui.Current()
	lines := []string{t.Title.Render("Summary"), ""}
	for _, v := range views {
		head := fmt.Sprintf("%-17s %4d", t.Accent.Render(v.Title()), v.Len())
		if err := v.Err(); err != nil {
			head += "  " + t.Error.Render("unavailable")
		}
		lines = append(lines, head)
		for _, f := range v.FlagNames() {
			set, total := v.Count(f)
			lines = append(lines, fmt.Sprintf("  %-14s %s", f, t.Muted.Render(ui.ProgressBar(set, total, 16))))
		}
	}
	r.p.Panel(lines...)
	return loadErr
}

func (r *runner) interactive(ctx context.Context, args []string) error {
	fs, params := flags("tui")
	if err := fs.Parse(args); err != nil {
		return usagef("tui: %v", err)
	}
	p := values(params)
	names := fs.Args()
	if len(names) == 0 {
		names = r.summaryResources()
		if p["restaurant"] != "" {
			names = append([]string{"restaurant-items"}, names...)
		}
	}

	handler := tui.NewLogHandler(r.level)
	log := slog.New(handler)
	views := make([]catalog.View, 0, len(names))
	for _, name := range names {
		v, err := r.open(name, p, log)
		if err != nil {
			for _, o := range views {
				o.Close()
			}
			return err
		}
		views = append(views, v)
	}
	err := r.opt.Interactive(ctx, views, tui.Options{Timeout: r.cfg.Timeout, Log: handler})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
