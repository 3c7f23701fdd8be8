package oracle

import (
	"errors"

	"github.com/fxamacker/cbor"
)

// Location tells the oracle network where to find the code or the secrets.
type Location uint8

const (
	LocationInline Location = iota
	LocationRemote
	LocationDONHosted
)

var locationNames = map[string]Location{
	"inline":    LocationInline,
	"remote":    LocationRemote,
	"donHosted": LocationDONHosted,
}

func ParseLocation(name string) (Location, error) {
	l, ok := locationNames[name]
	if !ok {
		return 0, errors.New("unknown location: " + name)
	}
	return l, nil
}

type CodeLanguage uint8

const CodeLanguageJavaScript CodeLanguage = 0

// Request is a Chainlink Functions request stored in the consumer contract.
type Request struct {
	CodeLocation    Location
	Language        CodeLanguage
	Source          string
	SecretsLocation Location
	// SecretsReference points to the encrypted secrets, e.g. a DON hosted slot.
	SecretsReference []byte
	Args             []string
	BytesArgs        [][]byte
}

func (r Request) Validate() error {
	if r.Source == "" {
		return errors.New("request source is empty")
	}
	if r.CodeLocation != LocationInline {
		return errors.New("only inline source code is supported")
	}
	if r.Language != CodeLanguageJavaScript {
		return errors.New("only JavaScript source code is supported")
	}
	if len(r.SecretsReference) > 0 && r.SecretsLocation == LocationInline {
		return errors.New("secrets must be remote or DON hosted")
	}
	return nil
}

// EncodeCBOR encodes the request the way the oracle network decodes it.
// Optional keys are left out when empty.
func (r Request) EncodeCBOR() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"codeLocation": uint64(r.CodeLocation),
		"language":     uint64(r.Language),
		"source":       r.Source,
	}
	if len(r.SecretsReference) > 0 {
		payload["secretsLocation"] = uint64(r.SecretsLocation)
		payload["secrets"] = r.SecretsReference
	}
	if len(r.Args) > 0 {
		payload["args"] = r.Args
	}
	if len(r.BytesArgs) > 0 {
		payload["bytesArgs"] = r.BytesArgs
	}

	dump, err := cbor.Marshal(payload, cbor.CanonicalEncOptions())
	if err != nil {
		return nil, errors.New("failed to encode the request: " + err.Error())
	}

	return dump, nil
}
