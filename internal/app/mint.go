package app

import (
	"context"
	"errors"
	"math/big"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/metrics"
	"rwa-mint/internal/model"
	"rwa-mint/internal/wizard"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// MintCall is an unsigned mint transaction for the user's wallet.
type MintCall struct {
	To     string
	From   string
	Data   string
	Amount int64
}

type Asset struct {
	TokenID string
	URI     string
	Owner   string
}

func mintData(session model.Session) (blockchain.MintData, error) {
	if err := wizard.Complete(session, model.StepMint); err != nil {
		return blockchain.MintData{}, invalid(err)
	}

	return blockchain.MintData{
		Title:       session.Title(),
		Category:    session.Category(),
		Location:    session.Form.Get(model.FieldAssetLocation),
		MetadataURI: session.MetadataCID,
		ImageURI:    session.ThumbnailCID,
		Signature:   session.LegalContract.Signature,
		ContractURI: session.LegalContract.ContractURI,
	}, nil
}

func (a *App) encodedMintData(session model.Session) ([]byte, error) {
	data, err := mintData(session)
	if err != nil {
		return nil, err
	}

	encoded, err := blockchain.EncodeMintData(data)
	if err != nil {
		return nil, invalid(err)
	}
	return encoded, nil
}

// MintCalldata builds the mint transaction the user can send from the wallet.
func (a *App) MintCalldata(ctx context.Context, sessionID string) (MintCall, error) {
	if a.chain == nil {
		return MintCall{}, ErrChainDisabled
	}

	session, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return MintCall{}, err
	}

	encoded, err := a.encodedMintData(session)
	if err != nil {
		return MintCall{}, err
	}

	wallet := session.Form.Get(model.FieldWalletAddress)
	calldata, err := a.chain.MintCalldata(wallet, a.config.MintAmount, encoded)
	if err != nil {
		return MintCall{}, err
	}

	return MintCall{
		To:     a.chain.Address().Hex(),
		From:   wallet,
		Data:   hexutil.Encode(calldata),
		Amount: a.config.MintAmount,
	}, nil
}

// Mint sends the mint transaction with the operator key to the user's wallet
// and stores the receipt hashes in the session. The transaction hash is stored
// as soon as it is sent, a retry of an unconfirmed mint waits for that
// transaction instead of sending another one.
func (a *App) Mint(ctx context.Context, sessionID string) (model.Session, error) {
	if a.chain == nil {
		return model.Session{}, ErrChainDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, mintTimeout)
	defer cancel()

	session, err := a.update(ctx, sessionID, func(session *model.Session) error {
		if session.MintBlockHash != "" {
			return invalid(ErrAlreadyMinted)
		}
		if session.MintTxHash != "" {
			return nil
		}

		encoded, err := a.encodedMintData(*session)
		if err != nil {
			return err
		}

		wallet := session.Form.Get(model.FieldWalletAddress)
		txHash, err := a.chain.SendMint(ctx, wallet, a.config.MintAmount, encoded)
		if err != nil {
			metrics.IncMint(err)
			a.logger.Error("mint failed: "+err.Error(), zap.String("sessionID", session.SessionID))
			return err
		}

		session.MintTxHash = txHash
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}

	receipt, err := a.chain.WaitMined(ctx, session.MintTxHash)
	if errors.Is(err, blockchain.ErrTxFailed) {
		metrics.IncMint(err)
		a.logger.Error("mint reverted", zap.String("sessionID", sessionID), zap.String("tx", session.MintTxHash))

		// a reverted mint can be sent again
		if _, clearErr := a.update(ctx, sessionID, func(s *model.Session) error {
			if s.MintTxHash == session.MintTxHash {
				s.MintTxHash = ""
			}
			return nil
		}); clearErr != nil {
			a.logger.Error("failed to clear the reverted transaction: "+clearErr.Error(), zap.String("sessionID", sessionID))
		}
		return model.Session{}, err
	}
	if err != nil {
		a.logger.Warn("mint not confirmed yet: "+err.Error(), zap.String("sessionID", sessionID), zap.String("tx", session.MintTxHash))
		return model.Session{}, err
	}

	metrics.IncMint(nil)
	return a.update(ctx, sessionID, func(session *model.Session) error {
		session.MintTxHash = receipt.TxHash
		session.MintBlockHash = receipt.BlockHash

		a.logger.Info("asset minted",
			zap.String("sessionID", session.SessionID),
			zap.String("tx", receipt.TxHash),
			zap.String("block", receipt.BlockHash),
		)
		return nil
	})
}

// GetAsset reads the token URI and owner from the contract.
func (a *App) GetAsset(ctx context.Context, tokenID string) (Asset, error) {
	if a.chain == nil {
		return Asset{}, ErrChainDisabled
	}

	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok || id.Sign() < 0 {
		return Asset{}, invalid(errors.New("invalid token id: " + tokenID))
	}

	uri, err := a.chain.TokenURI(ctx, id)
	if err != nil {
		return Asset{}, err
	}

	owner, err := a.chain.OwnerOf(ctx, id)
	if err != nil {
		return Asset{}, err
	}

	return Asset{TokenID: id.String(), URI: uri, Owner: owner.Hex()}, nil
}
