package ghl

import (
	"errors"
	"time"
)

// ErrInvalidRequest marks a request object rejected before any network call.
var ErrInvalidRequest = errors.New("invalid request")

// Contact is a CRM contact record as returned by the GHL tool endpoint.
type Contact struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	DateAdded string   `json:"dateAdded,omitempty"`
}

// ContactFields carries the writable fields for contact creation/upsert.
type ContactFields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Tags      []string
}

// args renders the non-empty fields as tool arguments.
func (f ContactFields) args() map[string]any {
	args := map[string]any{}
	if f.FirstName != "" {
		args["firstName"] = f.FirstName
	}
	if f.LastName != "" {
		args["lastName"] = f.LastName
	}
	if f.Email != "" {
		args["email"] = f.Email
	}
	if f.Phone != "" {
		args["phone"] = f.Phone
	}
	if len(f.Tags) > 0 {
		args["tags"] = f.Tags
	}
	return args
}

// ContactQuery filters contact listing.
type ContactQuery struct {
	Limit  int
	Offset int
	Query  string // free-text search, optional
}

// Slot is a bookable time window on a calendar.
type Slot struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// Confirmation is the booking receipt for a scheduled appointment.
type Confirmation struct {
	AppointmentID string    `json:"appointmentId"`
	CalendarID    string    `json:"calendarId"`
	ContactID     string    `json:"contactId"`
	Status        string    `json:"status"`
	Start         time.Time `json:"startTime"`
	End           time.Time `json:"endTime"`
}

// Message is one entry of a CRM conversation thread.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Direction      string `json:"direction,omitempty"` // inbound | outbound
	Channel        string `json:"type,omitempty"`      // SMS, EMAIL, ...
	Body           string `json:"body"`
	DateAdded      string `json:"dateAdded,omitempty"`
}

// Transaction is a payment record tied to a contact.
type Transaction struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contactId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	Status    string  `json:"status,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// TransactionQuery filters transaction listing.
type TransactionQuery struct {
	Limit     int
	Offset    int
	StartDate string // YYYY-MM-DD, optional
	EndDate   string // YYYY-MM-DD, optional
}
