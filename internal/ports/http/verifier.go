package http

import (
	"net/http"
	"rwa-mint/internal/verifier"

	"github.com/gorilla/mux"
)

type signInResponse struct {
	SessionID string                        `json:"sessionID"`
	Request   verifier.AuthorizationRequest `json:"request"`
}

// getVerifierSignIn returns the proof request the frontend renders as a QR code.
func (ser *server) getVerifierSignIn(w http.ResponseWriter, r *http.Request) {
	id, request, err := ser.app.VerifierSignIn(normalize(r.URL.Query().Get("sessionId")))
	if err != nil {
		ser.appError(w, "creating the proof request failed", err)
		return
	}

	ser.respond(w, http.StatusOK, signInResponse{SessionID: id, Request: request})
}

// getVerifierRequest lets the frontend render the QR code again after a reload.
func (ser *server) getVerifierRequest(w http.ResponseWriter, r *http.Request) {
	request, err := ser.app.VerifierRequest(normalize(mux.Vars(r)["sessionID"]))
	if err != nil {
		ser.appError(w, "getting the proof request failed", err)
		return
	}

	ser.respond(w, http.StatusOK, request)
}
