package blockchain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// contractABI covers the functions of the RealWorldAsset contract used by the service.
const contractABI = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[
		{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"updateRequest","stateMutability":"nonpayable","inputs":[
		{"name":"_requestCBOR","type":"bytes"},{"name":"_subscriptionId","type":"uint64"},
		{"name":"_fulfillGasLimit","type":"uint32"},{"name":"_donID","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"uri","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

const (
	methodMint          = "mint"
	methodUpdateRequest = "updateRequest"
	methodURI           = "uri"
	methodOwnerOf       = "ownerOf"
)

var (
	parsedABI    = mustParseABI(contractABI)
	mintDataArgs = mustMintDataArgs()
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic("invalid contract ABI: " + err.Error())
	}
	return parsed
}

func mustMintDataArgs() abi.Arguments {
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}

	return abi.Arguments{
		{Name: "title", Type: stringType},
		{Name: "category", Type: stringType},
		{Name: "location", Type: stringType},
		{Name: "metadataURI", Type: stringType},
		{Name: "imageURI", Type: stringType},
		{Name: "signature", Type: bytesType},
		{Name: "contractURI", Type: stringType},
	}
}

// MintData is the payload passed as the data argument of mint.
type MintData struct {
	Title       string
	Category    string
	Location    string
	MetadataURI string
	ImageURI    string
	// Signature is the hex encoded legal contract signature.
	Signature   string
	ContractURI string
}

func EncodeMintData(data MintData) ([]byte, error) {
	signature, err := hexutil.Decode(data.Signature)
	if err != nil {
		return nil, errors.New("invalid signature encoding: " + err.Error())
	}

	packed, err := mintDataArgs.Pack(
		data.Title,
		data.Category,
		data.Location,
		data.MetadataURI,
		data.ImageURI,
		signature,
		data.ContractURI,
	)
	if err != nil {
		return nil, errors.New("failed to encode the mint data: " + err.Error())
	}

	return packed, nil
}

func DecodeMintData(packed []byte) (MintData, error) {
	values, err := mintDataArgs.Unpack(packed)
	if err != nil {
		return MintData{}, errors.New("failed to decode the mint data: " + err.Error())
	}
	if len(values) != len(mintDataArgs) {
		return MintData{}, fmt.Errorf("expected %d values, got %d", len(mintDataArgs), len(values))
	}

	strs := make([]string, 0, len(values))
	var signature []byte
	for i, v := range values {
		switch typed := v.(type) {
		case string:
			strs = append(strs, typed)
		case []byte:
			signature = typed
		default:
			return MintData{}, fmt.Errorf("unexpected type %T at position %d", v, i)
		}
	}
	if len(strs) != 6 {
		return MintData{}, errors.New("malformed mint data")
	}

	return MintData{
		Title:       strs[0],
		Category:    strs[1],
		Location:    strs[2],
		MetadataURI: strs[3],
		ImageURI:    strs[4],
		Signature:   hexutil.Encode(signature),
		ContractURI: strs[5],
	}, nil
}

// FormatBytes32String right pads a short string into bytes32, e.g. a DON id.
func FormatBytes32String(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > 31 {
		return out, errors.New("string must be shorter than 32 bytes: " + s)
	}
	copy(out[:], s)
	return out, nil
}

// DecodeUTF8Hex turns an oracle response like 0x373139303030 into its text.
func DecodeUTF8Hex(encoded string) (string, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(encoded))
	if err != nil {
		return "", errors.New("invalid hex: " + err.Error())
	}
	if !utf8.Valid(raw) {
		return "", errors.New("value is not valid UTF-8")
	}
	return string(raw), nil
}
