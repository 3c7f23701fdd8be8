package model

import (
	"encoding/json"
	"time"
)

// Metadata is the JSON document pinned to IPFS and referenced by the token.
type Metadata struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	AssetType         string             `json:"assetType"`
	Image             string             `json:"image"`
	Location          string             `json:"location"`
	LegalContractData *LegalContractData `json:"legalContractData"`
	Attributes        json.RawMessage    `json:"attributes"`
}

type SubmissionStatus string

const (
	SubmissionStatusActive  SubmissionStatus = "active"
	SubmissionStatusInvalid SubmissionStatus = "invalid"
)

func (status SubmissionStatus) String() string {
	return string(status)
}

// Submission is the write-once record of pinned metadata.
type Submission struct {
	MetadataCID  string
	SessionID    string
	Metadata     []byte
	MetadataHash string
	ImageCID     string
	Status       SubmissionStatus
	CreatedAt    time.Time
}
