package ghl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/remote"
)

func testClient(t *testing.T, handler http.Handler, enabled bool) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		Enabled:    enabled,
		BaseURL:    srv.URL,
		Token:      "pit-test",
		LocationID: "loc-test",
		CalendarID: "cal-default",
		Timeout:    2 * time.Second,
	}, logger.New("error", false))
	return c, &calls
}

func okEnvelope(result any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": result})
	})
}

func TestGateOffShortCircuits(t *testing.T) {
	c, calls := testClient(t, okEnvelope(nil), false)

	ops := []struct {
		name string
		run  func() error
	}{
		{"get_contacts", func() error {
			_, err := c.GetContacts(context.Background(), ContactQuery{Limit: 10})
			return err
		}},
		{"create_contact", func() error {
			_, err := c.CreateContact(context.Background(), ContactFields{Email: "a@b.c"})
			return err
		}},
		{"schedule_appointment", func() error {
			slot := Slot{Start: time.Now(), End: time.Now().Add(time.Hour)}
			_, err := c.ScheduleAppointment(context.Background(), "", slot, "contact-1")
			return err
		}},
		{"list_messages", func() error {
			_, err := c.ListMessages(context.Background(), "contact-1", 10)
			return err
		}},
		{"list_transactions", func() error {
			_, err := c.ListTransactions(context.Background(), TransactionQuery{})
			return err
		}},
		{"probe", func() error { return c.Probe(context.Background()) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			err := op.run()
			if kind, ok := remote.KindOf(err); !ok || kind != remote.KindServiceDisabled {
				t.Fatalf("err = %v, want ServiceDisabled", err)
			}
		})
	}

	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("gate off issued %d network calls, want 0", n)
	}
}

func TestCallSendsToolEnvelopeAndAuth(t *testing.T) {
	var got envelope
	var auth, location string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		location = r.Header.Get("locationId")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"contacts": []map[string]any{{"id": "c1", "email": "a@b.c"}}},
		})
	}), true)

	contacts, err := c.GetContacts(context.Background(), ContactQuery{Limit: 5, Query: "ring"})
	if err != nil {
		t.Fatalf("GetContacts failed: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != "c1" {
		t.Errorf("contacts = %+v, want one contact c1", contacts)
	}
	if auth != "Bearer pit-test" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
	if location != "loc-test" {
		t.Errorf("locationId = %q, want loc-test", location)
	}
	if got.ToolName != "contacts_get-contacts" {
		t.Errorf("tool_name = %q, want contacts_get-contacts", got.ToolName)
	}
	if got.Arguments["query"] != "ring" {
		t.Errorf("arguments.query = %v, want ring", got.Arguments["query"])
	}
}

func TestTimeoutYieldsUnreachableWithinBound(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}), true)
	c = c.WithTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := c.CreateContact(context.Background(), ContactFields{Email: "a@b.c"})
	elapsed := time.Since(start)

	if kind, ok := remote.KindOf(err); !ok || kind != remote.KindUnreachable {
		t.Fatalf("err = %v, want Unreachable", err)
	}
	// Must give up at the configured timeout, not wait the server out.
	if elapsed > 300*time.Millisecond {
		t.Errorf("call took %v, want ~50ms timeout", elapsed)
	}
}

func TestCallerCancellationAbortsCall(t *testing.T) {
	release := make(chan struct{})
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}), true)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.GetContacts(ctx, ContactQuery{})
	if kind, ok := remote.KindOf(err); !ok || kind != remote.KindUnreachable {
		t.Fatalf("err = %v, want Unreachable", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not abort the in-flight call")
	}
}

func TestHTTPErrorYieldsRemoteRejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "envelope error body yields its message",
			body:       `{"error":"invalid phone"}`,
			wantDetail: "invalid phone",
		},
		{
			name:       "non-envelope body is kept verbatim",
			body:       "upstream proxy error",
			wantDetail: "upstream proxy error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			}), true)

			_, err := c.CreateContact(context.Background(), ContactFields{Phone: "not-a-phone"})

			var re *remote.Error
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *remote.Error", err)
			}
			if re.Kind != remote.KindRemoteRejected {
				t.Fatalf("kind = %v, want RemoteRejected", re.Kind)
			}
			if re.Status != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", re.Status)
			}
			if re.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", re.Detail, tt.wantDetail)
			}
		})
	}
}

func TestEnvelopeFailureYieldsRemoteRejected(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "invalid phone"})
	}), true)

	_, err := c.CreateContact(context.Background(), ContactFields{Phone: "not-a-phone"})

	var re *remote.Error
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *remote.Error", err)
	}
	if re.Kind != remote.KindRemoteRejected {
		t.Fatalf("kind = %v, want RemoteRejected", re.Kind)
	}
	if re.Detail != "invalid phone" {
		t.Errorf("detail = %q, want upstream message verbatim", re.Detail)
	}
}

func TestMalformedBodyYieldsBadResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway error</html>"},
		{"result does not match contract", `{"success":true,"result":{"contacts":"nope"}}`},
		{"missing result", `{"success":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}), true)

			_, err := c.GetContacts(context.Background(), ContactQuery{})
			if kind, ok := remote.KindOf(err); !ok || kind != remote.KindBadResponse {
				t.Fatalf("err = %v, want BadResponse", err)
			}
		})
	}
}

func TestScheduleAppointmentDefaultsCalendar(t *testing.T) {
	var got envelope
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": map[string]any{"appointment": map[string]any{
				"appointmentId": "appt-1",
				"calendarId":    "cal-default",
				"contactId":     "contact-1",
				"status":        "booked",
			}},
		})
	}), true)

	slot := Slot{Start: time.Now().Round(time.Second), End: time.Now().Round(time.Second).Add(time.Hour)}
	conf, err := c.ScheduleAppointment(context.Background(), "", slot, "contact-1")
	if err != nil {
		t.Fatalf("ScheduleAppointment failed: %v", err)
	}
	if conf.AppointmentID != "appt-1" {
		t.Errorf("AppointmentID = %q, want appt-1", conf.AppointmentID)
	}
	if got.Arguments["calendarId"] != "cal-default" {
		t.Errorf("calendarId = %v, want configured default", got.Arguments["calendarId"])
	}
}

func TestRequestValidation(t *testing.T) {
	c, calls := testClient(t, okEnvelope(nil), true)

	tests := []struct {
		name string
		run  func() error
	}{
		{"create contact without email or phone", func() error {
			_, err := c.CreateContact(context.Background(), ContactFields{FirstName: "A"})
			return err
		}},
		{"get contact without id", func() error {
			_, err := c.GetContact(context.Background(), "")
			return err
		}},
		{"schedule with inverted slot", func() error {
			slot := Slot{Start: time.Now().Add(time.Hour), End: time.Now()}
			_, err := c.ScheduleAppointment(context.Background(), "cal-1", slot, "contact-1")
			return err
		}},
		{"send message without body", func() error {
			_, err := c.SendMessage(context.Background(), "conv-1", "", "")
			return err
		}},
		{"add tags without tags", func() error {
			return c.AddTags(context.Background(), "contact-1", nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}

	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("invalid requests issued %d network calls, want 0", n)
	}
}
