package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/atenjiha/MAHSA-LEARN/internal/crypto"
)

type ResetStep int

const (
	StepEnteringID ResetStep = iota
	StepEnteringNewPIN
	StepDone
)

func (s ResetStep) String() string {
	switch s {
	case StepEnteringID:
		return "entering_id"
	case StepEnteringNewPIN:
		return "entering_new_pin"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	ErrStaffNotFound = errors.New("staff id not found")
	ErrBlankStaffID  = errors.New("staff id required")
	ErrWrongStep     = errors.New("reset flow is not at this step")
)

// ResetFunc overwrites the PIN of staffID. It returns ErrStaffNotFound when
// no such user exists.
type ResetFunc func(ctx context.Context, staffID, pin string) error

// PINReset walks the forgot-PIN flow: a staff id, then a new PIN, then back
// to login with the id pre-filled. No old PIN is asked for.
type PINReset struct {
	step    ResetStep
	staffID string
	reset   ResetFunc
}

func NewPINReset(reset ResetFunc) *PINReset {
	return &PINReset{step: StepEnteringID, reset: reset}
}

func (r *PINReset) Step() ResetStep {
	return r.step
}

func (r *PINReset) SubmitID(staffID string) error {
	if r.step != StepEnteringID {
		return ErrWrongStep
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return ErrBlankStaffID
	}
	r.staffID = staffID
	r.step = StepEnteringNewPIN
	return nil
}

func (r *PINReset) SubmitPIN(ctx context.Context, pin string) error {
	if r.step != StepEnteringNewPIN {
		return ErrWrongStep
	}
	if err := crypto.ValidatePIN(pin); err != nil {
		return err
	}
	if err := r.reset(ctx, r.staffID, pin); err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			r.step = StepEnteringID
			r.staffID = ""
		}
		return err
	}
	r.step = StepDone
	return nil
}

// LoginID is the staff id to pre-fill on the login form once the flow is done.
func (r *PINReset) LoginID() string {
	if r.step != StepDone {
		return ""
	}
	return r.staffID
}
