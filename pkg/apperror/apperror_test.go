package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
		kind Kind
	}{
		{Validation("op", "bad %d", 1), ErrValidation, KindValidation},
		{NotFound("op", "record", 7), ErrNotFound, KindNotFound},
		{Conflict("op", "taken"), ErrConflict, KindConflict},
		{Internal("op", errors.New("boom")), ErrInternal, KindInternal},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("expected %v to match %v", tt.err, tt.want)
		}
		if KindOf(tt.err) != tt.kind {
			t.Errorf("expected kind %s, got %s", tt.kind, KindOf(tt.err))
		}
	}
}

func TestInternalKeepsExistingKind(t *testing.T) {
	inner := Validation("model.apply", "quantity would go negative")
	wrapped := Internal("service.adjust", fmt.Errorf("in tx: %w", inner))

	if KindOf(wrapped) != KindValidation {
		t.Errorf("expected validation kind to survive, got %s", KindOf(wrapped))
	}
	if Internal("op", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("repo.save", cause)

	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable")
	}
	if err.Error() != "repo.save: internal error: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMessageOf(t *testing.T) {
	err := NotFound("svc.get", "item", "abc")
	if MessageOf(err) != "item abc not found" {
		t.Errorf("unexpected message %q", MessageOf(err))
	}
	if MessageOf(errors.New("plain")) != "plain" {
		t.Error("expected plain errors to pass through")
	}
}
