package verifier

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var ErrRequestNotFound = errors.New("no proof request for the session")

const sessionIDParam = "sessionId"

// Issuer creates the sign-in proof requests and keeps them until the wallet
// answers on the callback.
type Issuer struct {
	logger      *zap.Logger
	callbackURL string
	did         string
	requests    *cache.Cache
}

func NewIssuer(logger *zap.Logger, callbackURL, did string, ttl time.Duration) (*Issuer, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.New("invalid callback url: " + callbackURL)
	}
	if strings.TrimSpace(did) == "" {
		return nil, errors.New("verifier DID is empty")
	}

	return &Issuer{
		logger:      logger,
		callbackURL: callbackURL,
		did:         did,
		requests:    cache.New(ttl, 2*ttl),
	}, nil
}

// SignIn issues a new request for the session. An empty session ID gets a
// generated one, returned together with the request.
func (i *Issuer) SignIn(sessionID string) (string, AuthorizationRequest, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	callback, err := url.Parse(i.callbackURL)
	if err != nil {
		return "", AuthorizationRequest{}, err
	}
	query := callback.Query()
	query.Set(sessionIDParam, sessionID)
	callback.RawQuery = query.Encode()

	id := uuid.NewString()
	request := AuthorizationRequest{
		ID:       id,
		ThreadID: id,
		Typ:      MediaTypePlainMessage,
		Type:     AuthorizationRequestType,
		From:     i.did,
		Body: AuthorizationRequestBody{
			CallbackURL: callback.String(),
			Reason:      DeniedCountriesReason,
			Scope: []ZeroKnowledgeScope{{
				ID:        1,
				CircuitID: CircuitCredentialAtomicQuerySigV2,
				Query:     KYCCountryOfResidence(DeniedCountries),
			}},
		},
	}

	i.requests.SetDefault(sessionID, request)
	i.logger.Debug("issued proof request", zap.String("sessionID", sessionID), zap.String("requestID", id))

	return sessionID, request, nil
}

func (i *Issuer) Request(sessionID string) (AuthorizationRequest, error) {
	request, ok := i.requests.Get(sessionID)
	if !ok {
		return AuthorizationRequest{}, ErrRequestNotFound
	}
	return request.(AuthorizationRequest), nil
}
