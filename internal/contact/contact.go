// Package contact implements the in-memory contact store and its validation gate.
package contact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidContact indicates a contact was rejected because a required field is empty.
var ErrInvalidContact = errors.New("contact: invalid contact")

// Field names reported by InvalidContactError.
const (
	FieldFirstName   = "first name"
	FieldLastName    = "last name"
	FieldPhoneNumber = "phone number"
)

// InvalidContactError lists the required fields that were missing.
type InvalidContactError struct {
	Fields []string
}

func (e *InvalidContactError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrInvalidContact, strings.Join(e.Fields, ", "))
}

func (e *InvalidContactError) Unwrap() error {
	return ErrInvalidContact
}

// Contact is a validated first name, last name and phone number.
// The zero value is not a valid contact; use NewContact.
type Contact struct {
	firstName   string
	lastName    string
	phoneNumber string
}

// NewContact validates the three fields and returns a Contact.
// A field that is empty or only whitespace counts as absent. Values are
// stored exactly as given. No phone number format is enforced.
func NewContact(firstName, lastName, phoneNumber string) (Contact, error) {
	var missing []string
	if isBlank(firstName) {
		missing = append(missing, FieldFirstName)
	}
	if isBlank(lastName) {
		missing = append(missing, FieldLastName)
	}
	if isBlank(phoneNumber) {
		missing = append(missing, FieldPhoneNumber)
	}
	if len(missing) > 0 {
		return Contact{}, &InvalidContactError{Fields: missing}
	}
	return Contact{firstName: firstName, lastName: lastName, phoneNumber: phoneNumber}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FirstName returns the contact's first name.
func (c Contact) FirstName() string { return c.firstName }

// LastName returns the contact's last name.
func (c Contact) LastName() string { return c.lastName }

// PhoneNumber returns the contact's phone number.
func (c Contact) PhoneNumber() string { return c.phoneNumber }

// Matches reports whether the contact holds exactly the given triple.
func (c Contact) Matches(firstName, lastName, phoneNumber string) bool {
	return c.firstName == firstName && c.lastName == lastName && c.phoneNumber == phoneNumber
}

func (c Contact) String() string {
	return fmt.Sprintf("%s %s <%s>", c.firstName, c.lastName, c.phoneNumber)
}

// Store is an ordered, append-only collection of contacts.
// It is not safe for concurrent use.
type Store struct {
	contacts []Contact
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// AddContact validates the fields and appends a new contact.
// On failure it returns an *InvalidContactError and the store is unchanged.
func (s *Store) AddContact(firstName, lastName, phoneNumber string) error {
	c, err := NewContact(firstName, lastName, phoneNumber)
	if err != nil {
		return err
	}
	s.contacts = append(s.contacts, c)
	return nil
}

// Append stores a Contact built by NewContact. An incomplete Contact, such
// as the zero value, is rejected like AddContact would reject its fields.
func (s *Store) Append(c Contact) error {
	if _, err := NewContact(c.firstName, c.lastName, c.phoneNumber); err != nil {
		return err
	}
	s.contacts = append(s.contacts, c)
	return nil
}

// GetAllContacts returns a copy of all contacts in insertion order.
// The result is empty, never nil, when nothing has been added.
func (s *Store) GetAllContacts() []Contact {
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	return len(s.contacts)
}
