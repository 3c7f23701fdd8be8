package blockchain_test

import (
	"context"
	"math/big"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/keymanager"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	contractAddress = "0x1061faF91397d7B44814cEd2C2685D4a602417f5"
	recipient       = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	operatorKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// fakeBackend answers the node calls made by a bound contract. Methods not
// overridden here are never called by the client.
type fakeBackend struct {
	bind.ContractBackend

	callResult []byte
	lastCall   []byte
	sent       []*types.Transaction
	status     uint64
	// no receipt yet
	pending bool
}

func (f *fakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.lastCall = call.Data
	return f.callResult, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(6), BaseFee: big.NewInt(1)}, nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 100000, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.pending {
		return nil, ethereum.NotFound
	}
	return &types.Receipt{
		Status:      f.status,
		TxHash:      txHash,
		BlockHash:   common.HexToHash("0xb1"),
		BlockNumber: big.NewInt(7),
	}, nil
}

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func newClient(t *testing.T, backend *fakeBackend, withKey bool) *blockchain.Client {
	var opts *bind.TransactOpts
	if withKey {
		keys, err := keymanager.NewKeyManager(zap.NewNop()).LoadKeys(operatorKey)
		require.NoError(t, err)
		opts, err = keys.GetTransactor(80001)
		require.NoError(t, err)
	}

	client, err := blockchain.NewClient(zap.NewNop(), backend, contractAddress, opts)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsBadAddress(t *testing.T) {
	_, err := blockchain.NewClient(zap.NewNop(), &fakeBackend{}, "0x123", nil)
	assert.Error(t, err)
}

func TestMintCalldata(t *testing.T) {
	client := newClient(t, &fakeBackend{}, false)

	data, err := blockchain.EncodeMintData(example)
	require.NoError(t, err)

	calldata, err := client.MintCalldata(recipient, 1, data)
	require.NoError(t, err)

	assert.Equal(t, selector("mint(address,uint256,bytes)"), calldata[:4])
	assert.Equal(t, common.HexToAddress(recipient).Bytes(), calldata[4+12:4+32])
	assert.Equal(t, int64(1), new(big.Int).SetBytes(calldata[4+32:4+64]).Int64())

	_, err = client.MintCalldata("nope", 1, data)
	assert.Error(t, err)
}

func TestMint(t *testing.T) {
	backend := &fakeBackend{status: types.ReceiptStatusSuccessful}
	client := newClient(t, backend, true)

	data, err := blockchain.EncodeMintData(example)
	require.NoError(t, err)

	txHash, err := client.SendMint(context.Background(), recipient, 1, data)
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, tx.Hash().Hex(), txHash)
	assert.Equal(t, common.HexToAddress(contractAddress), *tx.To())

	expected, err := client.MintCalldata(recipient, 1, data)
	require.NoError(t, err)
	assert.Equal(t, expected, tx.Data())

	receipt, err := client.WaitMined(context.Background(), txHash)
	require.NoError(t, err)
	assert.Equal(t, txHash, receipt.TxHash)
	assert.Equal(t, common.HexToHash("0xb1").Hex(), receipt.BlockHash)
	assert.Equal(t, uint64(7), receipt.BlockNumber)
}

func TestMintReverted(t *testing.T) {
	backend := &fakeBackend{status: types.ReceiptStatusFailed}
	client := newClient(t, backend, true)

	txHash, err := client.SendMint(context.Background(), recipient, 1, []byte{0x01})
	require.NoError(t, err)

	_, err = client.WaitMined(context.Background(), txHash)
	assert.ErrorIs(t, err, blockchain.ErrTxFailed)
}

func TestWaitMinedPendingTransaction(t *testing.T) {
	backend := &fakeBackend{status: types.ReceiptStatusSuccessful, pending: true}
	client := newClient(t, backend, true)

	txHash, err := client.SendMint(context.Background(), recipient, 1, []byte{0x01})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.WaitMined(ctx, txHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), txHash)

	// the transaction was sent once, waiting again does not resend it
	backend.pending = false
	receipt, err := client.WaitMined(context.Background(), txHash)
	require.NoError(t, err)
	assert.Equal(t, txHash, receipt.TxHash)
	assert.Len(t, backend.sent, 1)

	_, err = client.WaitMined(context.Background(), "0x1234")
	assert.Error(t, err)
}

func TestReadOnlyClient(t *testing.T) {
	backend := &fakeBackend{}
	client := newClient(t, backend, false)

	_, err := client.SendMint(context.Background(), recipient, 1, []byte{0x01})
	assert.ErrorIs(t, err, blockchain.ErrReadOnly)

	_, err = client.UpdateRequest(context.Background(), []byte{0xa3}, 839, 500000, "fun-polygon-mumbai-1")
	assert.ErrorIs(t, err, blockchain.ErrReadOnly)
	assert.Empty(t, backend.sent)
}

func TestUpdateRequest(t *testing.T) {
	backend := &fakeBackend{status: types.ReceiptStatusSuccessful}
	client := newClient(t, backend, true)

	hash, err := client.UpdateRequest(context.Background(), []byte{0xa3, 0x66}, 839, 500000, "fun-polygon-mumbai-1")
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, backend.sent[0].Hash().Hex(), hash)

	input := backend.sent[0].Data()
	assert.Equal(t, selector("updateRequest(bytes,uint64,uint32,bytes32)"), input[:4])
	assert.Equal(t, int64(839), new(big.Int).SetBytes(input[4+32:4+64]).Int64())
	assert.Equal(t, int64(500000), new(big.Int).SetBytes(input[4+64:4+96]).Int64())
	assert.Equal(t, "fun-polygon-mumbai-1", string(input[4+96:4+96+20]))

	_, err = client.UpdateRequest(context.Background(), nil, 839, 500000, "a DON id that is longer than thirty two bytes")
	assert.Error(t, err)
}

func packOutput(t *testing.T, typ string, value interface{}) []byte {
	outType, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: outType}}.Pack(value)
	require.NoError(t, err)
	return packed
}

func TestTokenURI(t *testing.T) {
	backend := &fakeBackend{callResult: packOutput(t, "string", "ipfs://bafymeta")}
	client := newClient(t, backend, false)

	uri, err := client.TokenURI(context.Background(), big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "ipfs://bafymeta", uri)
	assert.Equal(t, selector("uri(uint256)"), backend.lastCall[:4])
	assert.Equal(t, int64(3), new(big.Int).SetBytes(backend.lastCall[4:36]).Int64())
}

func TestOwnerOf(t *testing.T) {
	backend := &fakeBackend{callResult: packOutput(t, "address", common.HexToAddress(recipient))}
	client := newClient(t, backend, false)

	owner, err := client.OwnerOf(context.Background(), big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, recipient, owner.Hex())
	assert.Equal(t, selector("ownerOf(uint256)"), backend.lastCall[:4])
}
