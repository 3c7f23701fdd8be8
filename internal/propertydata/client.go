package propertydata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"rwa-mint/internal/metrics"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	basicProfileAPI = "/propertyapi/v1.0.0/property/basicprofile"
	homeEquityAPI   = "/propertyapi/v1.0.0/valuation/homeequity"
)

var (
	ErrInvalidLocation = errors.New("location needs at least street and city separated by a comma")
	ErrNoValuation     = errors.New("no valuation in the response")
)

// Address is the two-line address format the property API expects.
type Address struct {
	Address1 string
	Address2 string
}

// ParseLocation splits "43 5th Ave, New York, NY 10003" into the street line
// and the rest of the address.
func ParseLocation(location string) (Address, error) {
	var parts []string
	for _, part := range strings.Split(location, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) < 2 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}

	return Address{
		Address1: parts[0],
		Address2: strings.Join(parts[1:], ", "),
	}, nil
}

func (a Address) cacheKey(api string) string {
	return api + "|" + strings.ToLower(a.Address1) + "|" + strings.ToLower(a.Address2)
}

type Client struct {
	logger     *zap.Logger
	url        string
	apiKey     string
	httpClient *http.Client
	cache      *cache.Cache
}

func NewClient(logger *zap.Logger, apiURL, apiKey string, cacheTTL time.Duration, timeout time.Duration) *Client {
	return &Client{
		logger:     logger,
		url:        strings.TrimSuffix(apiURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(cacheTTL, 2*cacheTTL),
	}
}

// BasicProfile returns the raw property profile for the location. The response
// is not validated, it is shown to the user and pinned as is.
func (c *Client) BasicProfile(ctx context.Context, location string) (json.RawMessage, error) {
	address, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	key := address.cacheKey(basicProfileAPI)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("property profile served from cache", zap.String("address1", address.Address1))
		metrics.IncPropertyRequest("basicprofile", "cached")
		return cached.(json.RawMessage), nil
	}

	body, err := c.get(ctx, basicProfileAPI, address)
	if err != nil {
		metrics.IncPropertyRequest("basicprofile", "error")
		return nil, err
	}

	if !json.Valid(body) {
		metrics.IncPropertyRequest("basicprofile", "error")
		return nil, errors.New("property profile response is not JSON")
	}

	data := json.RawMessage(body)
	c.cache.SetDefault(key, data)
	metrics.IncPropertyRequest("basicprofile", "ok")

	return data, nil
}

// HomeEquityValue returns the automated valuation amount for the location.
func (c *Client) HomeEquityValue(ctx context.Context, location string) (string, error) {
	address, err := ParseLocation(location)
	if err != nil {
		return "", err
	}

	key := address.cacheKey(homeEquityAPI)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("valuation served from cache", zap.String("address1", address.Address1))
		metrics.IncPropertyRequest("homeequity", "cached")
		return cached.(string), nil
	}

	body, err := c.get(ctx, homeEquityAPI, address)
	if err != nil {
		metrics.IncPropertyRequest("homeequity", "error")
		return "", err
	}
	metrics.IncPropertyRequest("homeequity", "ok")

	var unmarshalled struct {
		Property []struct {
			AVM struct {
				Amount struct {
					Value json.Number `json:"value"`
				} `json:"amount"`
			} `json:"avm"`
		} `json:"property"`
	}
	if err := json.Unmarshal(body, &unmarshalled); err != nil {
		return "", errors.New("failed to unmarshal the valuation: " + err.Error())
	}

	if len(unmarshalled.Property) == 0 || unmarshalled.Property[0].AVM.Amount.Value == "" {
		return "", ErrNoValuation
	}

	value := unmarshalled.Property[0].AVM.Amount.Value.String()
	c.cache.SetDefault(key, value)

	return value, nil
}

func (c *Client) get(ctx context.Context, api string, address Address) ([]byte, error) {
	query := url.Values{}
	query.Set("address1", address.Address1)
	query.Set("address2", address.Address2)

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+api+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	r.Header.Add("accept", "application/json")
	r.Header.Add("apikey", c.apiKey)
	r.Header.Add("accept-language", "en")

	c.logger.Debug("requesting property data", zap.String("api", api), zap.String("address1", address.Address1), zap.String("address2", address.Address2))

	resp, err := c.httpClient.Do(r)
	if err != nil {
		return nil, errors.New("property api request failed: " + err.Error())
	}

	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("reading response error: " + err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("property api status code: " + resp.Status + "; body: " + string(responseBody))
	}

	return responseBody, nil
}
