package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
)

const (
	pinJSONAPI = "/pinning/pinJSONToIPFS"
	pinFileAPI = "/pinning/pinFileToIPFS"

	contentTypeJSON = "application/json"
)

var ErrInvalidCID = errors.New("pinning service returned an invalid CID")

// Metadata is what the pinning service stores next to the pinned content.
type Metadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type Options struct {
	CidVersion int `json:"cidVersion"`
}

// DefaultOptions pins with CIDv1.
func DefaultOptions() Options {
	return Options{CidVersion: 1}
}

type JSONRequest struct {
	Content  interface{} `json:"pinataContent"`
	Metadata Metadata    `json:"pinataMetadata"`
	Options  Options     `json:"pinataOptions"`
}

type File struct {
	Name    string
	Content io.Reader
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type Client struct {
	logger     *zap.Logger
	url        string
	jwt        string
	httpClient *http.Client
}

func NewClient(logger *zap.Logger, apiURL, jwt string, timeout time.Duration) *Client {
	return &Client{
		logger:     logger,
		url:        strings.TrimSuffix(apiURL, "/"),
		jwt:        jwt,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PinJSON pins a JSON document and returns its CID.
func (c *Client) PinJSON(ctx context.Context, request JSONRequest) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", errors.New("failed to marshal the pin request: " + err.Error())
	}

	c.logger.Debug("pinning json", zap.String("name", request.Metadata.Name), zap.Int("size", len(body)))

	return c.send(ctx, pinJSONAPI, contentTypeJSON, bytes.NewReader(body))
}

// PinFile pins a single file sent as multipart form data and returns its CID.
func (c *Client) PinFile(ctx context.Context, file File, metadata Metadata, options Options) (string, error) {
	if file.Content == nil {
		return "", errors.New("file content is missing")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", errors.New("failed to create the file part: " + err.Error())
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return "", errors.New("failed to copy the file content: " + err.Error())
	}

	metadataDump, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataMetadata", string(metadataDump)); err != nil {
		return "", err
	}

	optionsDump, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataOptions", string(optionsDump)); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", err
	}

	c.logger.Debug("pinning file", zap.String("filename", file.Name), zap.String("name", metadata.Name), zap.Int("size", body.Len()))

	return c.send(ctx, pinFileAPI, writer.FormDataContentType(), &body)
}

func (c *Client) send(ctx context.Context, api, contentType string, body io.Reader) (string, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+api, body)
	if err != nil {
		return "", err
	}
	r.Header.Add("Content-Type", contentType)
	r.Header.Add("Authorization", "Bearer "+c.jwt)

	resp, err := c.httpClient.Do(r)
	if err != nil {
		return "", errors.New("pinning request failed: " + err.Error())
	}

	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.New("reading response error: " + err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("pinning status code: " + resp.Status + "; body: " + string(responseBody))
	}

	var unmarshalled pinResponse
	if err := json.Unmarshal(responseBody, &unmarshalled); err != nil {
		return "", errors.New("failed to unmarshal the response: " + err.Error())
	}

	if _, err := cid.Decode(unmarshalled.IpfsHash); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidCID, unmarshalled.IpfsHash, err)
	}

	c.logger.Info("pinned to IPFS", zap.String("cid", unmarshalled.IpfsHash), zap.Int64("pinSize", unmarshalled.PinSize))

	return unmarshalled.IpfsHash, nil
}
