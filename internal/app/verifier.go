package app

import (
	"errors"
	"fmt"
	"rwa-mint/internal/model"
	"rwa-mint/internal/verifier"
)

var ErrVerifierDisabled = errors.New("verifier is not configured")

// VerifierSignIn issues the KYC proof request shown to the wallet as a QR code.
func (a *App) VerifierSignIn(sessionID string) (string, verifier.AuthorizationRequest, error) {
	if a.verifier == nil {
		return "", verifier.AuthorizationRequest{}, ErrVerifierDisabled
	}
	return a.verifier.SignIn(sessionID)
}

// VerifierRequest returns the proof request issued for the session while it
// is still waiting for the wallet.
func (a *App) VerifierRequest(sessionID string) (verifier.AuthorizationRequest, error) {
	if a.verifier == nil {
		return verifier.AuthorizationRequest{}, ErrVerifierDisabled
	}

	request, err := a.verifier.Request(sessionID)
	if errors.Is(err, verifier.ErrRequestNotFound) {
		return verifier.AuthorizationRequest{}, fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}
	return request, err
}
