package crypto

import (
	"crypto/subtle"
	"errors"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

var ErrInvalidPIN = errors.New("pin must be exactly 4 digits")

// PINs are stored as plain strings; comparison is constant-time so the
// login path does not leak how many leading digits matched.

func CheckPIN(stored, candidate string) error {
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return errors.New("pin mismatch")
	}
	return nil
}

func ValidatePIN(pin string) error {
	if !model.ValidPIN(pin) {
		return ErrInvalidPIN
	}
	return nil
}
