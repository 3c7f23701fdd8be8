package keymanager

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type Keys struct {
	PrivateKey *ecdsa.PrivateKey
}

func (k Keys) Address() common.Address {
	return crypto.PubkeyToAddress(k.PrivateKey.PublicKey)
}

func (k Keys) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(k.PrivateKey))
}

func (k Keys) PublicKeyBytes() []byte {
	return crypto.FromECDSAPub(&k.PrivateKey.PublicKey)
}

// GetTransactor returns the options signing transactions for the given chain.
func (k Keys) GetTransactor(chainID int64) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(k.PrivateKey, big.NewInt(chainID))
	if err != nil {
		return nil, errors.New("failed to create the transactor: " + err.Error())
	}
	return opts, nil
}

// SignHash signs a 32 byte digest. The recovery id is shifted to 27/28
// the way wallets return it.
func (k Keys) SignHash(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, k.PrivateKey)
	if err != nil {
		return nil, errors.New("failed to sign: " + err.Error())
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// KeyManager creates and imports operator keys. It does not keep them.
type KeyManager struct {
	logger *zap.Logger
}

func NewKeyManager(logger *zap.Logger) KeyManager {
	return KeyManager{logger: logger}
}

func (k KeyManager) GenerateKeys() (Keys, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return Keys{}, errors.New("failed to generate the keys: " + err.Error())
	}

	key, err := crypto.ToECDSA(priv.Serialize())
	if err != nil {
		return Keys{}, errors.New("failed to convert the keys: " + err.Error())
	}

	keys := Keys{PrivateKey: key}
	k.logger.Debug("generated keys", zap.String("address", keys.Address().Hex()))

	return keys, nil
}

// LoadKeys imports a hex encoded private key, with or without the 0x prefix.
func (k KeyManager) LoadKeys(privateKeyHex string) (Keys, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return Keys{}, errors.New("private key is empty")
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return Keys{}, errors.New("invalid private key: " + err.Error())
	}

	keys := Keys{PrivateKey: key}
	k.logger.Debug("loaded keys", zap.String("address", keys.Address().Hex()))

	return keys, nil
}
