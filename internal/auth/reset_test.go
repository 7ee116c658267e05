package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/atenjiha/MAHSA-LEARN/internal/crypto"
)

func TestPINResetHappyPath(t *testing.T) {
	pins := map[string]string{"12345": "1234"}
	flow := NewPINReset(func(_ context.Context, id, pin string) error {
		if _, ok := pins[id]; !ok {
			return ErrStaffNotFound
		}
		pins[id] = pin
		return nil
	})
	if flow.Step() != StepEnteringID {
		t.Fatalf("expected entering_id, got %s", flow.Step())
	}
	if err := flow.SubmitID(" 12345 "); err != nil {
		t.Fatalf("submit id error: %v", err)
	}
	if flow.Step() != StepEnteringNewPIN {
		t.Fatalf("expected entering_new_pin, got %s", flow.Step())
	}
	if err := flow.SubmitPIN(context.Background(), "9876"); err != nil {
		t.Fatalf("submit pin error: %v", err)
	}
	if flow.Step() != StepDone || flow.LoginID() != "12345" {
		t.Fatalf("expected done with login id, got %s %q", flow.Step(), flow.LoginID())
	}
	if pins["12345"] != "9876" {
		t.Fatalf("expected pin to be overwritten, got %s", pins["12345"])
	}
}

func TestPINResetRejectsBadPIN(t *testing.T) {
	called := false
	flow := NewPINReset(func(context.Context, string, string) error {
		called = true
		return nil
	})
	if err := flow.SubmitID("12345"); err != nil {
		t.Fatalf("submit id error: %v", err)
	}
	if err := flow.SubmitPIN(context.Background(), "12a"); !errors.Is(err, crypto.ErrInvalidPIN) {
		t.Fatalf("expected invalid pin, got %v", err)
	}
	if called || flow.Step() != StepEnteringNewPIN {
		t.Fatalf("invalid pin must not reach the store or change step")
	}
}

func TestPINResetUnknownIDReturnsToStart(t *testing.T) {
	flow := NewPINReset(func(context.Context, string, string) error {
		return ErrStaffNotFound
	})
	if err := flow.SubmitID(""); !errors.Is(err, ErrBlankStaffID) {
		t.Fatalf("expected blank id error, got %v", err)
	}
	if err := flow.SubmitID("nobody"); err != nil {
		t.Fatalf("submit id error: %v", err)
	}
	if err := flow.SubmitPIN(context.Background(), "1111"); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if flow.Step() != StepEnteringID || flow.LoginID() != "" {
		t.Fatalf("expected flow back at entering_id")
	}
	if err := flow.SubmitPIN(context.Background(), "1111"); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step, got %v", err)
	}
}
