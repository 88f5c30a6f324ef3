package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/MegaGrindStone/jester-web-ui/internal/services"
)

func TestProviderError(t *testing.T) {
	cause := errors.New("status 429: rate limited")
	err := &services.ProviderError{Provider: "openai", Err: cause}

	if !strings.Contains(err.Error(), "openai") {
		t.Errorf("Error() = %q, want provider name included", err.Error())
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should unwrap to the cause")
	}

	var perr *services.ProviderError
	if !errors.As(error(err), &perr) {
		t.Error("errors.As() should match *ProviderError")
	}
}
