package fallback

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/braxlabs/facet/internal/remote"
)

func TestRespondIsTotalAndDeterministic(t *testing.T) {
	r := NewResponder()

	for _, op := range []Op{OpContacts, OpScheduling, OpMessages, OpTransactions, OpSearch} {
		first := r.Respond(op, remote.KindUnreachable)
		second := r.Respond(op, remote.KindUnreachable)
		if first != second {
			t.Errorf("Respond(%s) not deterministic: %+v vs %+v", op, first, second)
		}
		if first.Message == "" {
			t.Errorf("Respond(%s) returned empty message", op)
		}
		if first.Status != "Unreachable" {
			t.Errorf("Respond(%s).Status = %q, want Unreachable", op, first.Status)
		}
	}

	// Unknown operation kinds still get a usable message.
	res := r.Respond(Op("unknown"), remote.KindServiceDisabled)
	if res.Message == "" || res.Status != "ServiceDisabled" {
		t.Errorf("Respond(unknown) = %+v, want generic message", res)
	}
}

func TestAbsorbPolicy(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		name       string
		err        error
		wantHandle bool
		wantStatus string
	}{
		{
			name:       "gate off absorbed",
			err:        remote.Disabled("ghl", "get_contacts"),
			wantHandle: true,
			wantStatus: "ServiceDisabled",
		},
		{
			name:       "unreachable absorbed",
			err:        remote.Unreachable("ghl", "get_contacts", errors.New("timeout")),
			wantHandle: true,
			wantStatus: "Unreachable",
		},
		{
			name: "remote rejection surfaces",
			err:  remote.Rejected("ghl", "create_contact", 422, "invalid phone"),
		},
		{
			name: "bad response surfaces",
			err:  remote.BadResponse("ghl", "get_contacts", errors.New("unexpected EOF")),
		},
		{
			name: "plain error surfaces",
			err:  errors.New("boom"),
		},
		{
			name: "nil error not absorbed",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, handled := r.Absorb(OpScheduling, tt.err)
			if handled != tt.wantHandle {
				t.Fatalf("Absorb() handled = %v, want %v", handled, tt.wantHandle)
			}
			if handled && res.Status != tt.wantStatus {
				t.Errorf("Absorb().Status = %q, want %q", res.Status, tt.wantStatus)
			}
		})
	}
}

func TestLoadOverridesCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fallback.yaml")
	content := []byte("messages:\n  scheduling: \"Our concierge will call you back.\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := r.Respond(OpScheduling, remote.KindUnreachable).Message; got != "Our concierge will call you back." {
		t.Errorf("override not applied, got %q", got)
	}
	// Untouched entries keep the defaults.
	if got := r.Respond(OpSearch, remote.KindUnreachable).Message; got != defaultMessages[OpSearch] {
		t.Errorf("default dropped, got %q", got)
	}
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown operation", "messages:\n  shipping: \"nope\"\n"},
		{"empty message", "messages:\n  search: \"\"\n"},
		{"invalid yaml", "messages: [not a map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fallback.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("failed to write catalog: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load should have failed")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail on a missing file")
	}
}
