package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"rwa-mint/internal/app"
	"rwa-mint/internal/model"
	"rwa-mint/internal/ports/http/middleware/auth"
	"rwa-mint/internal/wizard"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// max image size is 10MB
const maxImageSize = 10 << 20

type retrievedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	CID         string `json:"cid"`
}

type retrievedSession struct {
	SessionID     string                   `json:"sessionID"`
	Owner         string                   `json:"owner,omitempty"`
	Step          int                      `json:"step"`
	StepName      string                   `json:"stepName"`
	FurthestStep  int                      `json:"furthestStep"`
	Fields        map[string]string        `json:"fields"`
	Files         map[string]retrievedFile `json:"files"`
	UseAPI        *bool                    `json:"useApi"`
	APIData       json.RawMessage          `json:"apiData,omitempty"`
	ManualFields  []model.Attribute        `json:"manualFields"`
	LegalContract *model.LegalContractData `json:"legalContractData,omitempty"`
	ThumbnailCID  string                   `json:"thumbnailCID,omitempty"`
	MetadataCID   string                   `json:"metadataCID,omitempty"`
	MintTxHash    string                   `json:"mintTxHash,omitempty"`
	MintBlockHash string                   `json:"mintBlockHash,omitempty"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

func (r *retrievedSession) assign(session model.Session) {
	r.SessionID = session.SessionID
	r.Owner = session.Owner
	r.Step = int(session.Step)
	r.StepName = session.Step.String()
	r.FurthestStep = int(session.FurthestStep)
	r.Fields = session.Form.Fields
	r.Files = make(map[string]retrievedFile, len(session.Form.Files))
	for name, f := range session.Form.Files {
		r.Files[name] = retrievedFile{Name: f.Name, ContentType: f.ContentType, Size: f.Size, CID: f.CID}
	}
	r.UseAPI = session.UseAPI
	r.APIData = session.APIData
	r.ManualFields = session.ManualFields
	r.LegalContract = session.LegalContract
	r.ThumbnailCID = session.ThumbnailCID
	r.MetadataCID = session.MetadataCID
	r.MintTxHash = session.MintTxHash
	r.MintBlockHash = session.MintBlockHash
	r.UpdatedAt = session.UpdatedAt
}

func (ser *server) respondSession(w http.ResponseWriter, status int, session model.Session) {
	var response retrievedSession
	response.assign(session)
	ser.respond(w, status, response)
}

// readBody decodes an optional JSON body.
func readBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("failed to decode the request body: " + err.Error())
	}
	return nil
}

func sessionID(r *http.Request) string {
	return normalize(mux.Vars(r)["sessionID"])
}

type createSessionRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (ser *server) createSession(w http.ResponseWriter, r *http.Request) {
	var request createSessionRequest
	if err := readBody(r, &request); err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	owner := auth.UserID(r.Context())
	if owner == "" {
		owner = normalize(request.WalletAddress)
	}

	session, err := ser.app.CreateSession(r.Context(), owner)
	if err != nil {
		ser.appError(w, "creating the session failed", err)
		return
	}

	ser.respondSession(w, http.StatusCreated, session)
}

func (ser *server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := ser.app.GetSession(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "getting the session failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

func (ser *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := ser.app.DeleteSession(r.Context(), sessionID(r)); err != nil {
		ser.appError(w, "deleting the session failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (ser *server) patchFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := readBody(r, &fields); err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.app.UpdateFields(r.Context(), sessionID(r), fields)
	if err != nil {
		ser.appError(w, "updating the fields failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

func (ser *server) putImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		ser.badRequest(w, "failed to parse the form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ser.badRequest(w, "failed to get the image from the form: "+err.Error())
		return
	}
	defer file.Close()

	ser.logger.Debug("uploading an image", zap.String("sessionID", sessionID(r)), zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	session, err := ser.app.UploadImage(r.Context(), sessionID(r), app.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		ser.appError(w, "uploading the image failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

type sourceRequest struct {
	UseAPI *bool `json:"useApi"`
}

func (ser *server) putSource(w http.ResponseWriter, r *http.Request) {
	var request sourceRequest
	if err := readBody(r, &request); err != nil {
		ser.badRequest(w, err.Error())
		return
	}
	if request.UseAPI == nil {
		ser.badRequest(w, "useApi is missing")
		return
	}

	session, err := ser.app.SetDataSource(r.Context(), sessionID(r), *request.UseAPI)
	if err != nil {
		ser.appError(w, "setting the data source failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

type valuationResponse struct {
	Location string `json:"location"`
	Value    string `json:"value"`
}

func (ser *server) getValuation(w http.ResponseWriter, r *http.Request) {
	session, err := ser.app.GetSession(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "getting the session failed", err)
		return
	}

	value, err := ser.app.PropertyValuation(r.Context(), session.SessionID)
	if err != nil {
		ser.appError(w, "getting the valuation failed", err)
		return
	}

	ser.respond(w, http.StatusOK, valuationResponse{
		Location: session.Form.Get(model.FieldAssetLocation),
		Value:    value,
	})
}

func (ser *server) postAttribute(w http.ResponseWriter, r *http.Request) {
	session, err := ser.app.AddManualField(r.Context(), sessionID(r))
	if err != nil {
		ser.appError(w, "adding the attribute failed", err)
		return
	}

	ser.respondSession(w, http.StatusCreated, session)
}

type attributeRequest struct {
	Part  string `json:"part"`
	Value string `json:"value"`
}

func attributeIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, errors.New("attribute index must be a number")
	}
	return index, nil
}

func (ser *server) putAttribute(w http.ResponseWriter, r *http.Request) {
	var request attributeRequest

	index, err := attributeIndex(r)
	if readErr := readBody(r, &request); readErr != nil {
		err = multierr.Append(err, readErr)
	}
	if request.Part == "" {
		err = multierr.Append(err, errors.New("part is missing"))
	}
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.app.ChangeManualField(r.Context(), sessionID(r), index, wizard.FieldPart(request.Part), request.Value)
	if err != nil {
		ser.appError(w, "changing the attribute failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

func (ser *server) deleteAttribute(w http.ResponseWriter, r *http.Request) {
	index, err := attributeIndex(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.app.RemoveManualField(r.Context(), sessionID(r), index)
	if err != nil {
		ser.appError(w, "removing the attribute failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}

type stepRequest struct {
	Action string `json:"action"`
	Step   int    `json:"step"`
}

func (ser *server) postStep(w http.ResponseWriter, r *http.Request) {
	var request stepRequest
	if err := readBody(r, &request); err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.app.Navigate(r.Context(), sessionID(r), app.NavigationAction(normalize(request.Action)), model.Step(request.Step))
	if err != nil {
		ser.appError(w, "changing the step failed", err)
		return
	}

	ser.respondSession(w, http.StatusOK, session)
}
