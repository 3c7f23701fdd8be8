package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Step int

// Wizard steps, in the order the user walks through them.
const (
	StepRegister Step = iota + 1
	StepAssetType
	StepDetails
	StepLegalContract
	StepSubmit
	StepMint
)

const (
	FirstStep = StepRegister
	LastStep  = StepMint
)

var stepNames = map[Step]string{
	StepRegister:      "register",
	StepAssetType:     "assetType",
	StepDetails:       "details",
	StepLegalContract: "legalContract",
	StepSubmit:        "submit",
	StepMint:          "mint",
}

func (s Step) IsValid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Attribute is a key/value pair entered by hand when the property API is not used.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type LegalContractData struct {
	Signature   string `json:"signature"`
	ContractURI string `json:"contractURI"`
}

// Session is the server-side state of one minting wizard.
type Session struct {
	SessionID string
	Owner     string

	Step         Step
	FurthestStep Step

	Form FormState

	// nil until the user decides between the property API and manual attributes
	UseAPI       *bool
	APIData      json.RawMessage
	ManualFields []Attribute

	// the typed-data effective date is fixed when the agreement is first shown
	ContractIssuedAt time.Time
	LegalContract    *LegalContractData

	ThumbnailCID string
	MetadataCID  string
	MetadataHash string

	MintTxHash    string
	MintBlockHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(owner string, now time.Time) Session {
	form := NewFormState()
	if owner != "" {
		form.Fields[FieldWalletAddress] = owner
	}

	return Session{
		SessionID:    uuid.NewString(),
		Owner:        owner,
		Step:         FirstStep,
		FurthestStep: FirstStep,
		Form:         form,
		ManualFields: []Attribute{{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s Session) UsesAPI() bool {
	return s.UseAPI != nil && *s.UseAPI
}

// Title and Category are the names the metadata and pins use for the asset.
func (s Session) Title() string {
	return s.Form.Get(FieldAssetName)
}

func (s Session) Category() string {
	return s.Form.Get(FieldAssetType)
}
