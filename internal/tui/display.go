package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/csvsource"
	"github.com/smileynet/contacts/internal/session"
)

// Display drives an interactive session until the user is done.
type Display interface {
	Run(ctx context.Context, sess *session.Session) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer         // Output destination (default: os.Stdout).
	Reader     io.Reader         // Input source (default: os.Stdin).
	ForcePlain bool              // Force plain text even if TTY.
	Rows       csvsource.Options // How plain-mode input lines map to contacts.
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain
// line-oriented display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Reader == nil {
		opts.Reader = os.Stdin
	}

	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer, r: opts.Reader, rows: opts.Rows}
	}

	return &TUIDisplay{w: opts.Writer, r: opts.Reader}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderPlain writes a numbered contact list, or "No contacts." when empty.
func RenderPlain(w io.Writer, contacts []contact.Contact) {
	if len(contacts) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts.")
		return
	}
	for i, c := range contacts {
		_, _ = fmt.Fprintf(w, "%3d. %s %s  %s\n", i+1, c.FirstName(), c.LastName(), c.PhoneNumber())
	}
}

// PlainDisplay reads one contact per line ("first,last,phone" or a bare
// phone number) and reports each outcome as a text line.
type PlainDisplay struct {
	w    io.Writer
	r    io.Reader
	rows csvsource.Options
}

// Run consumes input until EOF, then prints the session's contact list.
// Rejected lines are reported and skipped. Returns the context error if
// cancelled, even while blocked waiting for input.
func (d *PlainDisplay) Run(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(d.r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	line := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-scanErr:
				case <-ctx.Done():
					return ctx.Err()
				}
				if err != nil {
					return fmt.Errorf("tui: reading input: %w", err)
				}
				_, _ = fmt.Fprintf(d.w, "\nSession %s\n", sess.ID())
				RenderPlain(d.w, sess.Contacts())
				return nil
			}
			line++
			d.handleLine(sess, line, text)
		}
	}
}

// handleLine parses one input line and adds its contact to sess.
func (d *PlainDisplay) handleLine(sess *session.Session, line int, text string) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return
	}

	rows, err := csvsource.Read(strings.NewReader(text), d.rows)
	if err != nil {
		_, _ = fmt.Fprintf(d.w, "line %d: %v\n", line, err)
		return
	}
	for _, row := range rows {
		if err := sess.Add(row.FirstName, row.LastName, row.PhoneNumber); err != nil {
			_, _ = fmt.Fprintf(d.w, "line %d: %v\n", line, err)
			continue
		}
		_, _ = fmt.Fprintf(d.w, "added %s %s\n", row.FirstName, row.LastName)
	}
}

// TUIDisplay runs the Bubble Tea contact form.
type TUIDisplay struct {
	w io.Writer
	r io.Reader
}

// Run starts the Bubble Tea program and blocks until the user quits.
// The final list is printed after the program releases the terminal.
func (d *TUIDisplay) Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(NewModel(sess),
		tea.WithContext(ctx),
		tea.WithOutput(d.w),
		tea.WithInput(d.r),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("tui: %w", err)
	}

	RenderPlain(d.w, sess.Contacts())
	return nil
}
