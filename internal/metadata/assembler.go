package metadata

import (
	"encoding/json"
	"errors"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"strings"
	"time"
)

const ipfsScheme = "ipfs://"

// Input is everything the wizard collected for one submission.
type Input struct {
	Form          model.FormState
	ImageCID      string
	APIData       json.RawMessage
	ManualFields  []model.Attribute
	LegalContract *model.LegalContractData
}

func IPFSURI(cid string) string {
	if cid == "" || strings.HasPrefix(cid, ipfsScheme) {
		return cid
	}
	return ipfsScheme + cid
}

// Assemble merges the form, the attributes and the legal contract into the
// metadata document. Property API data wins over the manual fields.
func Assemble(in Input) (model.Metadata, error) {
	attributes, err := attributes(in.APIData, in.ManualFields)
	if err != nil {
		return model.Metadata{}, err
	}

	var legal *model.LegalContractData
	if in.LegalContract != nil {
		copied := *in.LegalContract
		legal = &copied
	}

	return model.Metadata{
		Name:              in.Form.Get(model.FieldAssetName),
		Description:       in.Form.Get(model.FieldDescription),
		AssetType:         in.Form.Get(model.FieldAssetType),
		Image:             IPFSURI(in.ImageCID),
		Location:          in.Form.Get(model.FieldAssetLocation),
		LegalContractData: legal,
		Attributes:        attributes,
	}, nil
}

func attributes(apiData json.RawMessage, manual []model.Attribute) (json.RawMessage, error) {
	if len(apiData) > 0 {
		if !json.Valid(apiData) {
			return nil, errors.New("property data is not valid JSON")
		}
		return apiData, nil
	}

	fields := make([]model.Attribute, 0, len(manual))
	for _, f := range manual {
		if strings.TrimSpace(f.Key) == "" {
			continue
		}
		fields = append(fields, model.Attribute{Key: strings.TrimSpace(f.Key), Value: f.Value})
	}

	dump, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.New("failed to marshal the attributes: " + err.Error())
	}

	return dump, nil
}

// Envelope wraps the metadata into the pin request stored under a readable name
// and the submission date.
func Envelope(m model.Metadata, now time.Time) pinning.JSONRequest {
	return pinning.JSONRequest{
		Content: m,
		Metadata: pinning.Metadata{
			Name: "Full Metadata for RWA NFT " + m.Name + " " + m.AssetType,
			KeyValues: map[string]string{
				"date": now.UTC().Format("2006-01-02"),
			},
		},
		Options: pinning.DefaultOptions(),
	}
}

// ThumbnailPinMetadata names the rendered thumbnail pin.
func ThumbnailPinMetadata(title, category string) pinning.Metadata {
	return pinning.Metadata{Name: "Full RWA NFT Thumbnail for: " + title + ", " + category}
}

// ImagePinMetadata names the pin of the image uploaded by the user.
func ImagePinMetadata(title, category string) pinning.Metadata {
	return pinning.Metadata{Name: "RWA NFT Thumbnail center image for: " + title + ", " + category}
}
