package legal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSignerMismatch   = errors.New("signature was not made by the expected address")
)

// Hash returns the EIP-712 digest of the typed data.
func Hash(typedData apitypes.TypedData) ([]byte, error) {
	if chainID(typedData.Domain) == nil {
		return nil, errors.New("typed data domain has no chain id")
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, errors.New("failed to hash the typed data: " + err.Error())
	}
	return hash, nil
}

// RecoverSigner returns the address that produced the hex encoded signature.
// Both 0/1 and 27/28 recovery ids are accepted.
func RecoverSigner(typedData apitypes.TypedData, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash, err := Hash(typedData)
	if err != nil {
		return common.Address{}, err
	}

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature checks that the expected address signed the typed data and
// returns the recovered signer.
func VerifySignature(typedData apitypes.TypedData, signature, expected string) (common.Address, error) {
	if !common.IsHexAddress(expected) {
		return common.Address{}, errors.New("invalid signer address: " + expected)
	}

	signer, err := RecoverSigner(typedData, signature)
	if err != nil {
		return common.Address{}, err
	}

	if signer != common.HexToAddress(expected) {
		return signer, fmt.Errorf("%w: recovered %s, expected %s", ErrSignerMismatch, signer.Hex(), common.HexToAddress(expected).Hex())
	}

	return signer, nil
}
