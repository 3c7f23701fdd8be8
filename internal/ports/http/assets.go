package http

import (
	"encoding/json"
	"net/http"
	"rwa-mint/internal/model"
	"time"

	"github.com/gorilla/mux"
)

type retrievedSubmission struct {
	MetadataCID  string          `json:"metadataCID"`
	SessionID    string          `json:"sessionID"`
	Metadata     json.RawMessage `json:"metadata"`
	MetadataHash string          `json:"metadataHash"`
	ImageCID     string          `json:"imageCID"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (r *retrievedSubmission) assign(submission model.Submission) {
	r.MetadataCID = submission.MetadataCID
	r.SessionID = submission.SessionID
	r.MetadataHash = submission.MetadataHash
	r.ImageCID = submission.ImageCID
	r.Status = submission.Status.String()
	r.CreatedAt = submission.CreatedAt

	// tampered content is not guaranteed to be JSON anymore
	if json.Valid(submission.Metadata) {
		r.Metadata = submission.Metadata
	} else {
		r.Metadata = json.RawMessage("null")
	}
}

type retrievedAsset struct {
	TokenID string `json:"tokenID"`
	URI     string `json:"uri"`
	Owner   string `json:"owner"`
}

func (ser *server) getSubmission(w http.ResponseWriter, r *http.Request) {
	cid := normalize(mux.Vars(r)["cid"])

	submission, err := ser.app.GetSubmission(r.Context(), cid)
	if err != nil {
		ser.appError(w, "getting the submission failed", err)
		return
	}

	var response retrievedSubmission
	response.assign(submission)
	ser.respond(w, http.StatusOK, response)
}

func (ser *server) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := ser.app.GetAsset(r.Context(), normalize(mux.Vars(r)["tokenID"]))
	if err != nil {
		ser.appError(w, "getting the asset failed", err)
		return
	}

	ser.respond(w, http.StatusOK, retrievedAsset{
		TokenID: asset.TokenID,
		URI:     asset.URI,
		Owner:   asset.Owner,
	})
}
