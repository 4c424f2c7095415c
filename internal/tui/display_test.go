package tui

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/csvsource"
	"github.com/smileynet/contacts/internal/session"
)

// --- isTTY ---

func TestIsTTY_NonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	if isTTY(&buf) {
		t.Error("non-*os.File writer should not be a TTY")
	}
}

func TestIsTTY_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if isTTY(f) {
		t.Error("regular file should not be a TTY")
	}
}

// --- NewDisplay ---

func TestNewDisplay_ForcePlainReturnsPlainDisplay(t *testing.T) {
	d := NewDisplay(DisplayOptions{Writer: os.Stdout, ForcePlain: true})
	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("NewDisplay(ForcePlain) = %T, want *PlainDisplay", d)
	}
}

func TestNewDisplay_NonTTYReturnsPlainDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(DisplayOptions{Writer: &buf})
	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("NewDisplay(non-TTY) = %T, want *PlainDisplay", d)
	}
}

// --- RenderPlain ---

func TestRenderPlain(t *testing.T) {
	a, err := contact.NewContact("John", "Hernandez", "0123456789")
	if err != nil {
		t.Fatal(err)
	}
	b, err := contact.NewContact("Jane", "Doe", "+0123456789")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	RenderPlain(&buf, []contact.Contact{a, b})

	want := "  1. John Hernandez  0123456789\n  2. Jane Doe  +0123456789\n"
	if buf.String() != want {
		t.Errorf("RenderPlain() = %q, want %q", buf.String(), want)
	}
}

func TestRenderPlain_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderPlain(&buf, nil)
	if buf.String() != "No contacts.\n" {
		t.Errorf("RenderPlain(nil) = %q, want %q", buf.String(), "No contacts.\n")
	}
}

// --- PlainDisplay ---

func TestPlainDisplay_AddsLinesAndReportsRejects(t *testing.T) {
	// Given input with a full row, a phone-only row, a comment and a bad row
	in := strings.NewReader("John,Hernandez,0123456789\n# skip me\n+0123456789\nJane,,555\n")
	var out bytes.Buffer
	d := NewDisplay(DisplayOptions{
		Writer:     &out,
		Reader:     in,
		ForcePlain: true,
		Rows:       csvsource.Options{DefaultFirstName: "John", DefaultLastName: "Doe"},
	})
	sess := session.New(session.WithID("plain-1"))

	// When the display runs to EOF
	if err := d.Run(context.Background(), sess); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Then valid rows are stored and the bad one is reported
	all := sess.Contacts()
	if len(all) != 2 {
		t.Fatalf("Contacts() len = %d, want 2", len(all))
	}
	if !all[1].Matches("John", "Doe", "+0123456789") {
		t.Errorf("phone-only row = %v, want John Doe +0123456789", all[1])
	}
	output := out.String()
	for _, want := range []string{
		"added John Hernandez",
		"line 4: contact: invalid contact: missing last name",
		"Session plain-1",
		"  2. John Doe  +0123456789",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q, got:\n%s", want, output)
		}
	}
}

func TestPlainDisplay_ReportsMalformedLine(t *testing.T) {
	var out bytes.Buffer
	d := &PlainDisplay{w: &out, r: strings.NewReader("a,b\n")}

	if err := d.Run(context.Background(), session.New()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "line 1: ") || !strings.Contains(out.String(), "expected 1 or 3 columns") {
		t.Errorf("output = %q, want column count error for line 1", out.String())
	}
	if !strings.Contains(out.String(), "No contacts.") {
		t.Errorf("output = %q, want empty list", out.String())
	}
}

func TestPlainDisplay_HandlesContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	d := &PlainDisplay{w: &out, r: strings.NewReader("John,Doe,1\n")}
	sess := session.New()

	err := d.Run(ctx, sess)
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if sess.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after cancellation", sess.Len())
	}
}

func TestPlainDisplay_CancelWhileWaitingForInput(t *testing.T) {
	// Given a reader that never delivers a line
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	d := &PlainDisplay{w: &out, r: pr}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, session.New()) }()

	// When the context is cancelled while Run blocks on input
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Then Run returns promptly with the context error
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() still blocked after context cancel")
	}
}

func TestPlainDisplay_CancelAfterSomeLines(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	d := &PlainDisplay{w: &out, r: pr}
	events := make(chan session.Event, 1)
	sess := session.New(session.WithEventCallback(func(e session.Event) { events <- e }))

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, sess) }()

	if _, err := io.WriteString(pw, "John,Hernandez,0123456789\n"); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-events:
		if e.Kind != session.EventAdded {
			t.Fatalf("event = %v, want added", e.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("line was not processed")
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() still blocked after context cancel")
	}
	if sess.Len() != 1 {
		t.Errorf("Len() = %d, want 1", sess.Len())
	}
}
