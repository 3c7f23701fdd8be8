package http

import (
	"net/http"
)

type signatureRequest struct {
	Signature string `json:"signature"`
}

// getLegalContract returns the EIP-712 typed data for the wallet to sign.
func (ser *server) getLegalContract(w http.ResponseWriter, r *http.Request) {
	typedData, err := ser.app.LegalContract(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "getting the legal contract failed", err)
		return
	}

	ser.respond(w, http.StatusOK, typedData)
}

func (ser *server) putLegalContract(w http.ResponseWriter, r *http.Request) {
	var request signatureRequest
	if err := readBody(r, &request); err != nil {
		ser.badRequest(w, err.Error())
		return
	}
	if normalize(request.Signature) == "" {
		ser.badRequest(w, "signature is missing")
		return
	}

	session, err := ser.app.SignLegalContract(r.Context(), sessionID(r), normalize(request.Signature))
	if err != nil {
		ser.appError(w, "signing the legal contract failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}
