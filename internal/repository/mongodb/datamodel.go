package mongodb

import (
	"rwa-mint/internal/model"
	"time"
)

type storedFile struct {
	Name        string `bson:"name"`
	ContentType string `bson:"contentType"`
	Size        int64  `bson:"size"`
	CID         string `bson:"cid"`
}

type storedAttribute struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

type storedLegalContract struct {
	Signature   string `bson:"signature"`
	ContractURI string `bson:"contractURI"`
}

type storedSession struct {
	SessionID        string                `bson:"_id"`
	Owner            string                `bson:"owner"`
	Step             int                   `bson:"step"`
	FurthestStep     int                   `bson:"furthestStep"`
	Fields           map[string]string     `bson:"fields"`
	Files            map[string]storedFile `bson:"files"`
	UseAPI           *bool                 `bson:"useApi,omitempty"`
	APIData          string                `bson:"apiData,omitempty"`
	ManualFields     []storedAttribute     `bson:"manualFields"`
	ContractIssuedAt time.Time             `bson:"contractIssuedAt,omitempty"`
	LegalContract    *storedLegalContract  `bson:"legalContract,omitempty"`
	ThumbnailCID     string                `bson:"thumbnailCID,omitempty"`
	MetadataCID      string                `bson:"metadataCID,omitempty"`
	MetadataHash     string                `bson:"metadataHash,omitempty"`
	MintTxHash       string                `bson:"mintTxHash,omitempty"`
	MintBlockHash    string                `bson:"mintBlockHash,omitempty"`
	CreatedAt        time.Time             `bson:"createdAt"`
	UpdatedAt        time.Time             `bson:"updatedAt"`
}

// the metadata is kept as the exact pinned bytes so the hash can be verified later
type storedSubmission struct {
	MetadataCID  string    `bson:"_id"`
	SessionID    string    `bson:"sessionID"`
	Metadata     []byte    `bson:"metadata"`
	MetadataHash string    `bson:"metadataHash"`
	ImageCID     string    `bson:"imageCID"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func toStoredSession(s model.Session) storedSession {
	files := make(map[string]storedFile, len(s.Form.Files))
	for name, f := range s.Form.Files {
		files[name] = storedFile{Name: f.Name, ContentType: f.ContentType, Size: f.Size, CID: f.CID}
	}

	manual := make([]storedAttribute, len(s.ManualFields))
	for i, a := range s.ManualFields {
		manual[i] = storedAttribute{Key: a.Key, Value: a.Value}
	}

	var legal *storedLegalContract
	if s.LegalContract != nil {
		legal = &storedLegalContract{Signature: s.LegalContract.Signature, ContractURI: s.LegalContract.ContractURI}
	}

	return storedSession{
		SessionID:        s.SessionID,
		Owner:            s.Owner,
		Step:             int(s.Step),
		FurthestStep:     int(s.FurthestStep),
		Fields:           s.Form.Fields,
		Files:            files,
		UseAPI:           s.UseAPI,
		APIData:          string(s.APIData),
		ManualFields:     manual,
		ContractIssuedAt: s.ContractIssuedAt,
		LegalContract:    legal,
		ThumbnailCID:     s.ThumbnailCID,
		MetadataCID:      s.MetadataCID,
		MetadataHash:     s.MetadataHash,
		MintTxHash:       s.MintTxHash,
		MintBlockHash:    s.MintBlockHash,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (s storedSession) toModel() model.Session {
	form := model.NewFormState()
	for name, value := range s.Fields {
		form.Fields[name] = value
	}
	for name, f := range s.Files {
		form.Files[name] = model.File{Name: f.Name, ContentType: f.ContentType, Size: f.Size, CID: f.CID}
	}

	manual := make([]model.Attribute, len(s.ManualFields))
	for i, a := range s.ManualFields {
		manual[i] = model.Attribute{Key: a.Key, Value: a.Value}
	}

	var legal *model.LegalContractData
	if s.LegalContract != nil {
		legal = &model.LegalContractData{Signature: s.LegalContract.Signature, ContractURI: s.LegalContract.ContractURI}
	}

	var apiData []byte
	if s.APIData != "" {
		apiData = []byte(s.APIData)
	}

	return model.Session{
		SessionID:        s.SessionID,
		Owner:            s.Owner,
		Step:             model.Step(s.Step),
		FurthestStep:     model.Step(s.FurthestStep),
		Form:             form,
		UseAPI:           s.UseAPI,
		APIData:          apiData,
		ManualFields:     manual,
		ContractIssuedAt: s.ContractIssuedAt,
		LegalContract:    legal,
		ThumbnailCID:     s.ThumbnailCID,
		MetadataCID:      s.MetadataCID,
		MetadataHash:     s.MetadataHash,
		MintTxHash:       s.MintTxHash,
		MintBlockHash:    s.MintBlockHash,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toStoredSubmission(s model.Submission) storedSubmission {
	return storedSubmission{
		MetadataCID:  s.MetadataCID,
		SessionID:    s.SessionID,
		Metadata:     s.Metadata,
		MetadataHash: s.MetadataHash,
		ImageCID:     s.ImageCID,
		Status:       s.Status.String(),
		CreatedAt:    s.CreatedAt,
	}
}

func (s storedSubmission) toModel() model.Submission {
	return model.Submission{
		MetadataCID:  s.MetadataCID,
		SessionID:    s.SessionID,
		Metadata:     s.Metadata,
		MetadataHash: s.MetadataHash,
		ImageCID:     s.ImageCID,
		Status:       model.SubmissionStatus(s.Status),
		CreatedAt:    s.CreatedAt,
	}
}
