package ghl

import (
	"context"
	"fmt"
	"time"
)

const defaultListLimit = 20

// GetContacts lists contacts, optionally filtered by a free-text query.
func (c *Client) GetContacts(ctx context.Context, q ContactQuery) ([]Contact, error) {
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	args := map[string]any{"limit": q.Limit, "offset": q.Offset}
	if q.Query != "" {
		args["query"] = q.Query
	}

	var out struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.call(ctx, "get_contacts", "contacts_get-contacts", args, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// GetContact fetches a single contact by ID.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	if contactID == "" {
		return nil, fmt.Errorf("get_contact: contactID is empty: %w", ErrInvalidRequest)
	}

	var out struct {
		Contact Contact `json:"contact"`
	}
	args := map[string]any{"contactId": contactID}
	if err := c.call(ctx, "get_contact", "contacts_get-contact", args, &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// CreateContact creates a new CRM contact. At least one reachable field
// (email or phone) is required. At-most-once-attempt: a timeout does not
// guarantee the contact was not created upstream.
func (c *Client) CreateContact(ctx context.Context, fields ContactFields) (*Contact, error) {
	if fields.Email == "" && fields.Phone == "" {
		return nil, fmt.Errorf("create_contact: email or phone is required: %w", ErrInvalidRequest)
	}

	var out struct {
		Contact Contact `json:"contact"`
	}
	if err := c.call(ctx, "create_contact", "contacts_create-contact", fields.args(), &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// UpsertContact creates or updates a contact matched by email/phone.
func (c *Client) UpsertContact(ctx context.Context, fields ContactFields) (*Contact, error) {
	if fields.Email == "" && fields.Phone == "" {
		return nil, fmt.Errorf("upsert_contact: email or phone is required: %w", ErrInvalidRequest)
	}

	var out struct {
		Contact Contact `json:"contact"`
	}
	if err := c.call(ctx, "upsert_contact", "contacts_upsert-contact", fields.args(), &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// AddTags attaches tags to a contact.
func (c *Client) AddTags(ctx context.Context, contactID string, tags []string) error {
	if contactID == "" || len(tags) == 0 {
		return fmt.Errorf("add_tags: contactID and tags are required: %w", ErrInvalidRequest)
	}
	args := map[string]any{"contactId": contactID, "tags": tags}
	return c.call(ctx, "add_tags", "contacts_add-tags", args, nil)
}

// RemoveTags detaches tags from a contact.
func (c *Client) RemoveTags(ctx context.Context, contactID string, tags []string) error {
	if contactID == "" || len(tags) == 0 {
		return fmt.Errorf("remove_tags: contactID and tags are required: %w", ErrInvalidRequest)
	}
	args := map[string]any{"contactId": contactID, "tags": tags}
	return c.call(ctx, "remove_tags", "contacts_remove-tags", args, nil)
}

// AvailableSlots lists open booking windows on a calendar. An empty
// calendarID falls back to the configured default calendar.
func (c *Client) AvailableSlots(ctx context.Context, calendarID string, from, to time.Time) ([]Slot, error) {
	if calendarID == "" {
		calendarID = c.cfg.CalendarID
	}
	if calendarID == "" {
		return nil, fmt.Errorf("available_slots: no calendarID given or configured: %w", ErrInvalidRequest)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("available_slots: to must be after from: %w", ErrInvalidRequest)
	}

	args := map[string]any{
		"calendarId": calendarID,
		"startDate":  from.Format(time.RFC3339),
		"endDate":    to.Format(time.RFC3339),
	}
	var out struct {
		Slots []Slot `json:"slots"`
	}
	if err := c.call(ctx, "available_slots", "calendars_get-available-slots", args, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// ScheduleAppointment books slot on a calendar for a contact. An empty
// calendarID falls back to the configured default. At-most-once-attempt:
// a timeout may leave the appointment created upstream.
func (c *Client) ScheduleAppointment(ctx context.Context, calendarID string, slot Slot, contactID string) (*Confirmation, error) {
	if calendarID == "" {
		calendarID = c.cfg.CalendarID
	}
	switch {
	case calendarID == "":
		return nil, fmt.Errorf("schedule_appointment: no calendarID given or configured: %w", ErrInvalidRequest)
	case contactID == "":
		return nil, fmt.Errorf("schedule_appointment: contactID is required: %w", ErrInvalidRequest)
	case slot.Start.IsZero() || !slot.End.After(slot.Start):
		return nil, fmt.Errorf("schedule_appointment: slot must have start < end: %w", ErrInvalidRequest)
	}

	args := map[string]any{
		"calendarId": calendarID,
		"contactId":  contactID,
		"startTime":  slot.Start.Format(time.RFC3339),
		"endTime":    slot.End.Format(time.RFC3339),
	}
	var out struct {
		Appointment Confirmation `json:"appointment"`
	}
	if err := c.call(ctx, "schedule_appointment", "calendars_create-appointment", args, &out); err != nil {
		return nil, err
	}
	return &out.Appointment, nil
}

// ListMessages fetches the most recent conversation messages for a contact.
func (c *Client) ListMessages(ctx context.Context, contactID string, limit int) ([]Message, error) {
	if contactID == "" {
		return nil, fmt.Errorf("list_messages: contactID is required: %w", ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	args := map[string]any{"contactId": contactID, "limit": limit}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.call(ctx, "list_messages", "conversations_get-messages", args, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage posts a message to a conversation thread. channel defaults to
// SMS, mirroring upstream behavior.
func (c *Client) SendMessage(ctx context.Context, conversationID, body, channel string) (*Message, error) {
	if conversationID == "" || body == "" {
		return nil, fmt.Errorf("send_message: conversationID and body are required: %w", ErrInvalidRequest)
	}
	if channel == "" {
		channel = "SMS"
	}

	args := map[string]any{"conversationId": conversationID, "message": body, "type": channel}
	var out struct {
		Message Message `json:"message"`
	}
	if err := c.call(ctx, "send_message", "conversations_send-a-new-message", args, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// ListTransactions fetches a page of payment transactions.
func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	args := map[string]any{"limit": q.Limit, "offset": q.Offset}
	if q.StartDate != "" {
		args["startDate"] = q.StartDate
	}
	if q.EndDate != "" {
		args["endDate"] = q.EndDate
	}

	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.call(ctx, "list_transactions", "payments_list-transactions", args, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// Probe issues the cheapest call the endpoint offers. Used only by the
// health aggregator, which supplies a short deadline through ctx.
func (c *Client) Probe(ctx context.Context) error {
	return c.call(ctx, "probe", "calendars_list-calendars", nil, nil)
}
