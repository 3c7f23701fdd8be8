package legal_test

import (
	"encoding/json"
	"rwa-mint/internal/keymanager"
	"rwa-mint/internal/legal"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	signerKey         = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	signerAddress     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	otherAddress      = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	verifyingContract = "0x5781d7f8fc387aD82917b6CF12b0e7A35b91f0FA"
)

var (
	domain    = legal.Domain{ChainID: 80001, VerifyingContract: verifyingContract}
	effective = time.Unix(1696161600, 0)
)

func sign(t *testing.T, contract legal.Contract) string {
	keys, err := keymanager.NewKeyManager(zap.NewNop()).LoadKeys(signerKey)
	require.NoError(t, err)

	hash, err := legal.Hash(contract.TypedData(domain))
	require.NoError(t, err)
	require.Len(t, hash, 32)

	sig, err := keys.SignHash(hash)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func TestNewContract(t *testing.T) {
	c := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective)

	assert.Equal(t, legal.Title, c.Title)
	assert.Equal(t, []legal.Party{{Name: "Anna Kowalska", Address: signerAddress}}, c.Parties)
	assert.Equal(t, legal.DefaultTerms, c.Terms)
	assert.Equal(t, int64(1696161600), c.EffectiveDate)
	assert.NoError(t, c.Validate())

	c = legal.NewContract("Anna", "Kowalska", "nope", "custom terms", effective)
	assert.Equal(t, "custom terms", c.Terms)
	assert.Error(t, c.Validate())
}

func TestTypedDataShape(t *testing.T) {
	td := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective).TypedData(domain)

	dump, err := json.Marshal(td)
	require.NoError(t, err)

	var decoded struct {
		PrimaryType string `json:"primaryType"`
		Domain      struct {
			Name              string `json:"name"`
			Version           string `json:"version"`
			ChainID           string `json:"chainId"`
			VerifyingContract string `json:"verifyingContract"`
		} `json:"domain"`
		Message struct {
			Title         string              `json:"title"`
			Parties       []map[string]string `json:"parties"`
			EffectiveDate string              `json:"effectiveDate"`
		} `json:"message"`
		Types map[string][]map[string]string `json:"types"`
	}
	require.NoError(t, json.Unmarshal(dump, &decoded))

	assert.Equal(t, "LegalContract", decoded.PrimaryType)
	assert.Equal(t, legal.DomainName, decoded.Domain.Name)
	assert.Equal(t, "1", decoded.Domain.Version)
	assert.Equal(t, "0x13881", decoded.Domain.ChainID)
	assert.Equal(t, verifyingContract, decoded.Domain.VerifyingContract)
	assert.Equal(t, legal.Title, decoded.Message.Title)
	assert.Equal(t, "1696161600", decoded.Message.EffectiveDate)
	assert.Equal(t, []map[string]string{{"name": "Anna Kowalska", "address": signerAddress}}, decoded.Message.Parties)
	assert.Equal(t, []map[string]string{
		{"name": "name", "type": "string"},
		{"name": "address", "type": "address"},
	}, decoded.Types["Party"])
}

func TestHashDependsOnContent(t *testing.T) {
	first, err := legal.Hash(legal.NewContract("Anna", "Kowalska", signerAddress, "", effective).TypedData(domain))
	require.NoError(t, err)
	again, err := legal.Hash(legal.NewContract("Anna", "Kowalska", signerAddress, "", effective).TypedData(domain))
	require.NoError(t, err)
	later, err := legal.Hash(legal.NewContract("Anna", "Kowalska", signerAddress, "", effective.Add(time.Second)).TypedData(domain))
	require.NoError(t, err)
	otherChain, err := legal.Hash(legal.NewContract("Anna", "Kowalska", signerAddress, "", effective).TypedData(legal.Domain{ChainID: 1, VerifyingContract: verifyingContract}))
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, later)
	assert.NotEqual(t, first, otherChain)
}

func TestVerifySignature(t *testing.T) {
	c := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective)
	sig := sign(t, c)

	signer, err := legal.VerifySignature(c.TypedData(domain), sig, signerAddress)
	require.NoError(t, err)
	assert.Equal(t, signerAddress, signer.Hex())

	_, err = legal.VerifySignature(c.TypedData(domain), sig, otherAddress)
	assert.ErrorIs(t, err, legal.ErrSignerMismatch)

	// signed terms differ from the verified ones
	tampered := c
	tampered.Terms = "other terms"
	_, err = legal.VerifySignature(tampered.TypedData(domain), sig, signerAddress)
	assert.ErrorIs(t, err, legal.ErrSignerMismatch)
}

func TestDomainWithoutVerifyingContract(t *testing.T) {
	chainOnly := legal.Domain{ChainID: 80001}
	c := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective)
	td := c.TypedData(chainOnly)

	assert.Len(t, td.Types["EIP712Domain"], 3)
	for _, field := range td.Types["EIP712Domain"] {
		assert.NotEqual(t, "verifyingContract", field.Name)
	}
	assert.Len(t, c.TypedData(domain).Types["EIP712Domain"], 4)

	hash, err := legal.Hash(td)
	require.NoError(t, err)
	withContract, err := legal.Hash(c.TypedData(domain))
	require.NoError(t, err)
	assert.NotEqual(t, withContract, hash)

	keys, err := keymanager.NewKeyManager(zap.NewNop()).LoadKeys(signerKey)
	require.NoError(t, err)
	sig, err := keys.SignHash(hash)
	require.NoError(t, err)

	signer, err := legal.VerifySignature(td, hexutil.Encode(sig), signerAddress)
	require.NoError(t, err)
	assert.Equal(t, signerAddress, signer.Hex())
}

func TestRecoverSignerAcceptsBothRecoveryIDs(t *testing.T) {
	c := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective)
	sig, err := hexutil.Decode(sign(t, c))
	require.NoError(t, err)

	sig[64] -= 27
	signer, err := legal.RecoverSigner(c.TypedData(domain), hexutil.Encode(sig))
	require.NoError(t, err)
	assert.Equal(t, signerAddress, signer.Hex())
}

func TestRecoverSignerRejectsMalformed(t *testing.T) {
	td := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective).TypedData(domain)

	for _, sig := range []string{"", "0x", "0x1234", "not hex"} {
		_, err := legal.RecoverSigner(td, sig)
		assert.ErrorIs(t, err, legal.ErrInvalidSignature, sig)
	}
}

func TestAgreementJSON(t *testing.T) {
	c := legal.NewContract("Anna", "Kowalska", signerAddress, "", effective)
	sig := sign(t, c)
	signer, err := legal.VerifySignature(c.TypedData(domain), sig, signerAddress)
	require.NoError(t, err)

	dump, err := legal.NewAgreement(c, domain, sig, signer).JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(dump, &decoded))
	assert.Equal(t, sig, decoded["signature"])
	assert.Equal(t, signerAddress, decoded["signer"])
	assert.Contains(t, decoded, "contract")
	assert.Contains(t, decoded, "domain")
}
