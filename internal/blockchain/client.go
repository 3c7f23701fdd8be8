package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const receiptPollInterval = time.Second

var (
	ErrReadOnly  = errors.New("client has no operator key, transactions are disabled")
	ErrTxFailed  = errors.New("transaction reverted")
	ErrNoResult  = errors.New("contract call returned no result")
	ErrBadResult = errors.New("contract call returned an unexpected type")
)

// Backend is what the client needs from a node: contract calls, transactions
// and receipts. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type MintReceipt struct {
	TxHash      string
	BlockHash   string
	BlockNumber uint64
}

type Client struct {
	logger     *zap.Logger
	backend    Backend
	address    common.Address
	contract   *bind.BoundContract
	transactor *bind.TransactOpts
}

// Dial connects to the JSON-RPC endpoint. transactor may be nil for a read-only client.
func Dial(ctx context.Context, logger *zap.Logger, rpcURL, contractAddress string, transactor *bind.TransactOpts) (*Client, func(), error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, errors.New("failed to connect to the node: " + err.Error())
	}

	client, err := NewClient(logger, ec, contractAddress, transactor)
	if err != nil {
		ec.Close()
		return nil, nil, err
	}

	logger.Info("connected to the node", zap.String("contract", client.address.Hex()))

	return client, ec.Close, nil
}

func NewClient(logger *zap.Logger, backend Backend, contractAddress string, transactor *bind.TransactOpts) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, errors.New("invalid contract address: " + contractAddress)
	}
	address := common.HexToAddress(contractAddress)

	return &Client{
		logger:     logger,
		backend:    backend,
		address:    address,
		contract:   bind.NewBoundContract(address, parsedABI, backend, backend, backend),
		transactor: transactor,
	}, nil
}

func (c *Client) Address() common.Address {
	return c.address
}

// MintCalldata packs the mint call, for wallets that send the transaction themselves.
func (c *Client) MintCalldata(to string, amount int64, data []byte) ([]byte, error) {
	recipient, err := recipient(to)
	if err != nil {
		return nil, err
	}

	packed, err := parsedABI.Pack(methodMint, recipient, big.NewInt(amount), data)
	if err != nil {
		return nil, errors.New("failed to pack the mint call: " + err.Error())
	}
	return packed, nil
}

// SendMint broadcasts the mint transaction with the operator key and returns
// its hash without waiting for it to be mined.
func (c *Client) SendMint(ctx context.Context, to string, amount int64, data []byte) (string, error) {
	recipient, err := recipient(to)
	if err != nil {
		return "", err
	}

	tx, err := c.transact(ctx, methodMint, recipient, big.NewInt(amount), data)
	if err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

// WaitMined blocks until the transaction has a receipt. A reverted transaction
// returns ErrTxFailed.
func (c *Client) WaitMined(ctx context.Context, txHash string) (MintReceipt, error) {
	hash, err := transactionHash(txHash)
	if err != nil {
		return MintReceipt{}, err
	}

	receipt, err := c.waitMined(ctx, hash)
	if err != nil {
		return MintReceipt{}, err
	}

	return MintReceipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockHash:   receipt.BlockHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// UpdateRequest stores the oracle request the contract sends on every upkeep.
func (c *Client) UpdateRequest(ctx context.Context, request []byte, subscriptionID uint64, gasLimit uint32, donID string) (string, error) {
	don, err := FormatBytes32String(donID)
	if err != nil {
		return "", err
	}

	tx, err := c.transact(ctx, methodUpdateRequest, request, subscriptionID, gasLimit, don)
	if err != nil {
		return "", err
	}

	if _, err := c.waitMined(ctx, tx.Hash()); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

func (c *Client) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	out, err := c.call(ctx, methodURI, tokenID)
	if err != nil {
		return "", err
	}

	uri, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrBadResult, out)
	}
	return uri, nil
}

func (c *Client) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	out, err := c.call(ctx, methodOwnerOf, tokenID)
	if err != nil {
		return common.Address{}, err
	}

	owner, ok := out.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %T", ErrBadResult, out)
	}
	return owner, nil
}

func (c *Client) call(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, errors.New(method + " call failed: " + err.Error())
	}
	if len(out) == 0 {
		return nil, ErrNoResult
	}
	return out[0], nil
}

func (c *Client) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	if c.transactor == nil {
		return nil, ErrReadOnly
	}

	opts := *c.transactor
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, method, params...)
	if err != nil {
		return nil, errors.New("failed to send the " + method + " transaction: " + err.Error())
	}

	c.logger.Info("transaction sent", zap.String("method", method), zap.String("tx", tx.Hash().Hex()))

	return tx, nil
}

func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, fmt.Errorf("%w: %s", ErrTxFailed, hash.Hex())
			}

			c.logger.Info("transaction mined",
				zap.String("tx", receipt.TxHash.Hex()),
				zap.String("block", receipt.BlockHash.Hex()),
			)
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("failed to get the receipt: "+err.Error(), zap.String("tx", hash.Hex()))
		}

		select {
		case <-ctx.Done():
			return nil, errors.New("failed to wait for the transaction " + hash.Hex() + ": " + ctx.Err().Error())
		case <-ticker.C:
		}
	}
}

func transactionHash(txHash string) (common.Hash, error) {
	raw, err := hexutil.Decode(txHash)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, errors.New("invalid transaction hash: " + txHash)
	}
	return common.BytesToHash(raw), nil
}

func recipient(to string) (common.Address, error) {
	if !common.IsHexAddress(to) {
		return common.Address{}, errors.New("invalid recipient address: " + to)
	}
	return common.HexToAddress(to), nil
}
