package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"math/big"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type memStore struct {
	mu          sync.Mutex
	sessions    map[string]model.Session
	submissions map[string]model.Submission
}

func newMemStore() *memStore {
	return &memStore{
		sessions:    make(map[string]model.Session),
		submissions: make(map[string]model.Submission),
	}
}

func (s *memStore) InsertSession(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; ok {
		return model.ErrAlreadyExists
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *memStore) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

func (s *memStore) UpdateSession(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; !ok {
		return model.ErrNotFound
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *memStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *memStore) InsertSubmission(ctx context.Context, submission model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[submission.MetadataCID]; ok {
		return model.ErrAlreadyExists
	}
	s.submissions[submission.MetadataCID] = submission
	return nil
}

func (s *memStore) GetSubmission(ctx context.Context, metadataCID string) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissions[metadataCID]
	if !ok {
		return model.Submission{}, model.ErrNotFound
	}
	return submission, nil
}

func (s *memStore) MarkSubmissionInvalid(ctx context.Context, metadataCID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissions[metadataCID]
	if !ok {
		return model.ErrNotFound
	}
	submission.Status = model.SubmissionStatusInvalid
	s.submissions[metadataCID] = submission
	return nil
}

type pinnedFile struct {
	Name     string
	Content  string
	Metadata pinning.Metadata
}

type fakePinner struct {
	files []pinnedFile
	jsons []pinning.JSONRequest
	err   error
}

func (p *fakePinner) PinJSON(ctx context.Context, request pinning.JSONRequest) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.jsons = append(p.jsons, request)
	if strings.HasPrefix(request.Metadata.Name, "Legal Contract") {
		return "bafylegal", nil
	}
	return "bafymeta", nil
}

func (p *fakePinner) PinFile(ctx context.Context, file pinning.File, metadata pinning.Metadata, options pinning.Options) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	content, err := ioutil.ReadAll(file.Content)
	if err != nil {
		return "", err
	}
	p.files = append(p.files, pinnedFile{Name: file.Name, Content: string(content), Metadata: metadata})
	if strings.HasSuffix(file.Name, ".svg") {
		return "bafythumb", nil
	}
	return "bafyimage", nil
}

type fakeProperties struct {
	calls int
	data  json.RawMessage
	err   error
}

func (f *fakeProperties) BasicProfile(ctx context.Context, location string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeProperties) HomeEquityValue(ctx context.Context, location string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "719000", nil
}

type fakeChain struct {
	minted  []string
	mintErr error
	// receipts are not available while pending
	pending bool
	waitErr error
	owner   common.Address
}

func (c *fakeChain) Address() common.Address {
	return common.HexToAddress("0x1061faF91397d7B44814cEd2C2685D4a602417f5")
}

func (c *fakeChain) MintCalldata(to string, amount int64, data []byte) ([]byte, error) {
	if !common.IsHexAddress(to) {
		return nil, errors.New("invalid recipient")
	}
	return append([]byte{0x73, 0x1c, 0x2a, 0x3e}, data...), nil
}

func (c *fakeChain) SendMint(ctx context.Context, to string, amount int64, data []byte) (string, error) {
	if c.mintErr != nil {
		return "", c.mintErr
	}
	decoded, err := blockchain.DecodeMintData(data)
	if err != nil {
		return "", err
	}
	c.minted = append(c.minted, decoded.MetadataURI)
	return "0xabc", nil
}

func (c *fakeChain) WaitMined(ctx context.Context, txHash string) (blockchain.MintReceipt, error) {
	if c.pending {
		return blockchain.MintReceipt{}, errors.New("failed to wait for the transaction " + txHash + ": context deadline exceeded")
	}
	if c.waitErr != nil {
		return blockchain.MintReceipt{}, c.waitErr
	}
	return blockchain.MintReceipt{TxHash: txHash, BlockHash: "0xdef", BlockNumber: 7}, nil
}

func (c *fakeChain) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return "ipfs://bafymeta", nil
}

func (c *fakeChain) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return c.owner, nil
}
