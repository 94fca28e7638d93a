package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes themed status lines. The zero value writes to
// stdout/stderr.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func (p Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p Printer) err() io.Writer {
	if p.Err == nil {
		return os.Stderr
	}
	return p.Err
}

func (p Printer) OK(msg string) {
	fmt.Fprintln(p.out(), current.Success.Render(current.SymOK+" "+msg))
}

func (p Printer) Fail(msg string) {
	fmt.Fprintln(p.err(), current.Error.Render(current.SymFail+" "+msg))
}

// Hint is a muted line on stderr, shown after a failure.
func (p Printer) Hint(msg string) {
	fmt.Fprintln(p.err(), current.Muted.Render(msg))
}

func (p Printer) Println(a ...any) { fmt.Fprintln(p.out(), a...) }

func (p Printer) Printf(format string, a ...any) { fmt.Fprintf(p.out(), format, a...) }

// Panel prints lines inside a framed box.
func (p Printer) Panel(lines ...string) { fmt.Fprintln(p.out(), PanelString(lines...)) }
