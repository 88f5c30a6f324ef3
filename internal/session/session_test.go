package session_test

import (
	"testing"

	"github.com/MegaGrindStone/jester-web-ui/internal/prompt"
	"github.com/MegaGrindStone/jester-web-ui/internal/session"
)

func TestTakePending(t *testing.T) {
	st := session.New("1")

	if got := st.TakePending(); got != "" {
		t.Errorf("TakePending() on fresh state = %q, want empty", got)
	}

	st.SetPending("Surprise me with a fresh, original joke.")

	if got := st.TakePending(); got != "Surprise me with a fresh, original joke." {
		t.Errorf("TakePending() = %q, want queued prompt", got)
	}
	if got := st.TakePending(); got != "" {
		t.Errorf("second TakePending() = %q, want empty", got)
	}
}

func TestSetPendingReplaces(t *testing.T) {
	st := session.New("1")

	st.SetPending("first")
	st.SetPending("second")

	if got := st.TakePending(); got != "second" {
		t.Errorf("TakePending() = %q, want %q", got, "second")
	}
}

func TestSettings(t *testing.T) {
	st := session.New("1")

	if got := st.Settings(); got != prompt.DefaultSettings() {
		t.Errorf("Settings() on fresh state = %+v, want defaults", got)
	}

	settings := st.Settings()
	settings.Style = "Pun"
	settings.Temperature = 1.2
	st.SetSettings(settings)

	got := st.Settings()
	if got.Style != "Pun" {
		t.Errorf("Settings().Style = %q, want %q", got.Style, "Pun")
	}
	if got.Temperature != 1.2 {
		t.Errorf("Settings().Temperature = %v, want 1.2", got.Temperature)
	}
}

func TestRegistryGet(t *testing.T) {
	r := session.NewRegistry()

	first := r.Get("a")
	if first == nil {
		t.Fatal("Get() returned nil")
	}
	if first.ID() != "a" {
		t.Errorf("ID() = %q, want %q", first.ID(), "a")
	}

	if again := r.Get("a"); again != first {
		t.Error("Get() returned a different state for the same session ID")
	}

	other := r.Get("b")
	if other == first {
		t.Error("Get() shared state across sessions")
	}

	// Pending prompts must not leak between sessions
	first.SetPending("queued")
	if got := other.TakePending(); got != "" {
		t.Errorf("TakePending() on other session = %q, want empty", got)
	}
}
