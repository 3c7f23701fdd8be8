package verifier

const (
	AuthorizationRequestType = "https://iden3-communication.io/authorization/1.0/request"
	MediaTypePlainMessage    = "application/iden3comm-plain-json"

	CircuitCredentialAtomicQuerySigV2 = "credentialAtomicQuerySigV2"

	KYCCountryOfResidenceType    = "KYCCountryOfResidenceCredential"
	KYCCountryOfResidenceContext = "https://raw.githubusercontent.com/iden3/claim-schema-vocab/main/schemas/json-ld/kyc-v4.jsonld"
)

// DeniedCountries are ISO 3166 numeric codes of China, North Korea and Russia.
var DeniedCountries = []int{156, 408, 643}

const DeniedCountriesReason = "Must live in a country other than listed: China, North Korea, or Russia"

type AuthorizationRequest struct {
	ID       string                   `json:"id"`
	ThreadID string                   `json:"thid"`
	Typ      string                   `json:"typ"`
	Type     string                   `json:"type"`
	From     string                   `json:"from"`
	Body     AuthorizationRequestBody `json:"body"`
}

type AuthorizationRequestBody struct {
	CallbackURL string                `json:"callbackUrl"`
	Reason      string                `json:"reason"`
	Message     string                `json:"message,omitempty"`
	Scope       []ZeroKnowledgeScope `json:"scope"`
}

type ZeroKnowledgeScope struct {
	ID        uint32 `json:"id"`
	CircuitID string `json:"circuitId"`
	Query     Query  `json:"query"`
}

type Query struct {
	AllowedIssuers    []string               `json:"allowedIssuers"`
	Type              string                 `json:"type"`
	Context           string                 `json:"context"`
	CredentialSubject map[string]interface{} `json:"credentialSubject"`
}

// KYCCountryOfResidence asks for a proof that the holder does not live in
// any of the given countries.
func KYCCountryOfResidence(denied []int) Query {
	return Query{
		AllowedIssuers: []string{"*"},
		Type:           KYCCountryOfResidenceType,
		Context:        KYCCountryOfResidenceContext,
		CredentialSubject: map[string]interface{}{
			"countryCode": map[string]interface{}{
				"$nin": denied,
			},
		},
	}
}
