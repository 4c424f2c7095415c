// Package session owns a contact store for the lifetime of one user session.
//
// A session starts with an empty store; contacts are added one at a time or
// imported from CSV rows. Nothing outlives the session.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/csvsource"
	"github.com/smileynet/contacts/internal/logging"
)

// EventKind identifies what happened to a contact candidate.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventRejected EventKind = "rejected"
)

// Event reports the outcome of one add attempt.
type Event struct {
	Kind    EventKind
	Contact contact.Contact // Zero value when rejected.
	Line    int             // Source line for imported rows, 0 otherwise.
	Err     error           // Set when rejected.
}

// EventCallback receives session events. It runs synchronously inside Add.
type EventCallback func(Event)

// Rejection records an imported row that failed validation.
type Rejection struct {
	Row csvsource.Row
	Err error
}

// Report summarizes an import.
type Report struct {
	SessionID string
	Added     int
	Rejected  []Rejection
}

// Err returns nil when every row was added. Otherwise it returns an error
// wrapping contact.ErrInvalidContact that counts the rejected rows.
func (r Report) Err() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, len(r.Rejected))
	for i, rj := range r.Rejected {
		errs[i] = fmt.Errorf("line %d: %w", rj.Row.Line, rj.Err)
	}
	return fmt.Errorf("session: %d row(s) rejected: %w", len(r.Rejected), errors.Join(errs...))
}

// Session pairs a fresh contact store with an identity and observers.
// Like the store it wraps, a Session is not safe for concurrent use.
type Session struct {
	id      string
	store   *contact.Store
	logger  *zap.Logger
	onEvent EventCallback
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithEventCallback sets the callback for add/reject events.
func WithEventCallback(cb EventCallback) Option {
	return func(s *Session) { s.onEvent = cb }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates a Session with an empty store and a random ID.
func New(opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		store:   contact.NewStore(),
		logger:  logging.Nop(),
		onEvent: func(Event) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	s.logger.Debug("session started")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Add validates and stores one contact.
func (s *Session) Add(firstName, lastName, phoneNumber string) error {
	return s.add(firstName, lastName, phoneNumber, 0)
}

func (s *Session) add(firstName, lastName, phoneNumber string, line int) error {
	c, err := contact.NewContact(firstName, lastName, phoneNumber)
	if err == nil {
		err = s.store.Append(c)
	}
	if err != nil {
		s.logger.Info("contact rejected", zap.Int("line", line), zap.Error(err))
		s.onEvent(Event{Kind: EventRejected, Line: line, Err: err})
		return err
	}
	s.logger.Debug("contact added", zap.Int("line", line), zap.Int("total", s.store.Len()))
	s.onEvent(Event{Kind: EventAdded, Contact: c, Line: line})
	return nil
}

// Import adds every row in order. Rejected rows are recorded and do not
// stop the import.
func (s *Session) Import(rows []csvsource.Row) Report {
	rep := Report{SessionID: s.id}
	for _, row := range rows {
		if err := s.add(row.FirstName, row.LastName, row.PhoneNumber, row.Line); err != nil {
			rep.Rejected = append(rep.Rejected, Rejection{Row: row, Err: err})
			continue
		}
		rep.Added++
	}
	s.logger.Debug("import finished", zap.Int("added", rep.Added), zap.Int("rejected", len(rep.Rejected)))
	return rep
}

// Contacts returns all contacts added in this session, in order.
func (s *Session) Contacts() []contact.Contact {
	return s.store.GetAllContacts()
}

// Len returns the number of contacts in the session.
func (s *Session) Len() int {
	return s.store.Len()
}
