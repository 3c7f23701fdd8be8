package model

import "strings"

// Form field names shared by the wizard steps.
const (
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldEmail         = "email"
	FieldRole          = "role"
	FieldWalletAddress = "walletAddress"
	FieldDID           = "DID"

	FieldAssetType     = "assetType"
	FieldAssetName     = "assetName"
	FieldAssetLocation = "assetLocation"
	FieldDescription   = "description"
	FieldListPrice     = "listPrice"
	FieldExpiryDate    = "expiryDate"

	FieldUploadedImage = "uploadedImageIPFSHash"
)

const FileAssetImage = "assetImage"

var AssetCategories = []string{
	"Real Estate",
	"Luxury Goods",
	"Art & Collectibles",
	"Precious Metals",
	"Fine Wine & Spirits",
	"IP & Patents",
	"Vehicles",
	"Other",
}

var Roles = []string{"Buyer", "Seller", "Certifier"}

// File is an uploaded file kept in the form. The content goes to IPFS, only the
// descriptor and the resulting CID stay in the form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	CID         string
}

// FormState maps field names to the values entered by the user.
type FormState struct {
	Fields map[string]string
	Files  map[string]File
}

func NewFormState() FormState {
	return FormState{
		Fields: make(map[string]string),
		Files:  make(map[string]File),
	}
}

func (f FormState) Get(name string) string {
	return f.Fields[name]
}

// AssetCategory resolves either a category label or an "optionN" selector
// to the category label. ok is false for anything else.
func AssetCategory(value string) (category string, ok bool) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "option") {
		index := 0
		for _, r := range value[len("option"):] {
			if r < '0' || r > '9' {
				return "", false
			}
			index = index*10 + int(r-'0')
		}
		if index < 1 || index > len(AssetCategories) {
			return "", false
		}
		return AssetCategories[index-1], true
	}

	for _, c := range AssetCategories {
		if strings.EqualFold(c, value) {
			return c, true
		}
	}

	return "", false
}

// TitleCaseRole normalizes a role given in any case, e.g. "seller" -> "Seller".
func TitleCaseRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return ""
	}
	return strings.ToUpper(role[:1]) + strings.ToLower(role[1:])
}
