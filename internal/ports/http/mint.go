package http

import (
	"net/http"
)

type mintCallResponse struct {
	To     string `json:"to"`
	From   string `json:"from"`
	Data   string `json:"data"`
	Amount int64  `json:"amount"`
}

func (ser *server) postSubmit(w http.ResponseWriter, r *http.Request) {
	session, err := ser.app.Submit(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "submitting the metadata failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

func (ser *server) getMintCalldata(w http.ResponseWriter, r *http.Request) {
	call, err := ser.app.MintCalldata(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "building the mint transaction failed", err)
		return
	}

	ser.respond(w, http.StatusOK, mintCallResponse{
		To:     call.To,
		From:   call.From,
		Data:   call.Data,
		Amount: call.Amount,
	})
}

func (ser *server) postMint(w http.ResponseWriter, r *http.Request) {
	session, err := ser.app.Mint(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "minting failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}
