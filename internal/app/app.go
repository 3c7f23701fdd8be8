package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/legal"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"rwa-mint/internal/verifier"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	submitTimeout = 30 * time.Second
	mintTimeout   = 2 * time.Minute
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrChainDisabled = errors.New("blockchain client is not configured")
	ErrAlreadyMinted = errors.New("asset already minted")
)

type Store interface {
	InsertSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	UpdateSession(ctx context.Context, session model.Session) error
	DeleteSession(ctx context.Context, sessionID string) error

	InsertSubmission(ctx context.Context, submission model.Submission) error
	GetSubmission(ctx context.Context, metadataCID string) (model.Submission, error)
	MarkSubmissionInvalid(ctx context.Context, metadataCID string) error
}

type Pinner interface {
	PinJSON(ctx context.Context, request pinning.JSONRequest) (string, error)
	PinFile(ctx context.Context, file pinning.File, metadata pinning.Metadata, options pinning.Options) (string, error)
}

type PropertyFetcher interface {
	BasicProfile(ctx context.Context, location string) (json.RawMessage, error)
	HomeEquityValue(ctx context.Context, location string) (string, error)
}

type Chain interface {
	Address() common.Address
	MintCalldata(to string, amount int64, data []byte) ([]byte, error)
	SendMint(ctx context.Context, to string, amount int64, data []byte) (string, error)
	WaitMined(ctx context.Context, txHash string) (blockchain.MintReceipt, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
}

type ProofRequester interface {
	SignIn(sessionID string) (string, verifier.AuthorizationRequest, error)
	Request(sessionID string) (verifier.AuthorizationRequest, error)
}

type Config struct {
	LegalDomain legal.Domain
	LegalTerms  string
	MintAmount  int64
}

type App struct {
	logger     *zap.Logger
	store      Store
	pinner     Pinner
	properties PropertyFetcher
	// nil when no node is configured
	chain    Chain
	verifier ProofRequester
	config   Config

	now func() time.Time
}

func NewApp(logger *zap.Logger, store Store, pinner Pinner, properties PropertyFetcher, chain Chain, proofs ProofRequester, config Config) *App {
	if config.MintAmount <= 0 {
		config.MintAmount = 1
	}

	return &App{
		logger:     logger,
		store:      store,
		pinner:     pinner,
		properties: properties,
		chain:      chain,
		verifier:   proofs,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func (a *App) save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = a.now()
	if err := a.store.UpdateSession(ctx, *session); err != nil {
		a.logger.Error("failed to save the session: "+err.Error(), zap.String("sessionID", session.SessionID))
		return err
	}
	return nil
}

// update loads the session, applies change and stores the result.
// Nothing is stored when change fails.
func (a *App) update(ctx context.Context, sessionID string, change func(session *model.Session) error) (model.Session, error) {
	session, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}

	if err := change(&session); err != nil {
		return model.Session{}, err
	}

	if err := a.save(ctx, &session); err != nil {
		return model.Session{}, err
	}

	return session, nil
}
