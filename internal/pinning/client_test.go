package pinning_test

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"rwa-mint/internal/pinning"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const (
	cidV0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	cidV1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newClient(url string) *pinning.Client {
	return pinning.NewClient(zap.NewNop(), url, "pinata-jwt", time.Second)
}

func TestPinJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer pinata-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"name": "RWA test"}, body["pinataContent"])
		assert.Equal(t, map[string]interface{}{"cidVersion": float64(1)}, body["pinataOptions"])
		assert.Equal(t, map[string]interface{}{
			"name":      "Full Metadata for RWA NFT RWA test Real Estate",
			"keyvalues": map[string]interface{}{"date": "2023-10-01"},
		}, body["pinataMetadata"])

		_, _ = w.Write([]byte(`{"IpfsHash":"` + cidV1 + `","PinSize":120,"Timestamp":"2023-10-01T12:00:00.000Z"}`))
	}))
	defer srv.Close()

	cid, err := newClient(srv.URL).PinJSON(context.Background(), pinning.JSONRequest{
		Content: map[string]string{"name": "RWA test"},
		Metadata: pinning.Metadata{
			Name:      "Full Metadata for RWA NFT RWA test Real Estate",
			KeyValues: map[string]string{"date": "2023-10-01"},
		},
		Options: pinning.DefaultOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, cidV1, cid)
}

func TestPinFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer pinata-jwt", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.JSONEq(t, `{"name":"RWA NFT Thumbnail"}`, r.FormValue("pinataMetadata"))
		assert.JSONEq(t, `{"cidVersion":1}`, r.FormValue("pinataOptions"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, err := ioutil.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, "nftThumbnail.svg", header.Filename)
		assert.Equal(t, "<svg/>", string(content))

		_, _ = w.Write([]byte(`{"IpfsHash":"` + cidV0 + `"}`))
	}))
	defer srv.Close()

	cid, err := newClient(srv.URL).PinFile(context.Background(),
		pinning.File{Name: "nftThumbnail.svg", Content: strings.NewReader("<svg/>")},
		pinning.Metadata{Name: "RWA NFT Thumbnail"},
		pinning.DefaultOptions(),
	)
	require.NoError(t, err)
	assert.Equal(t, cidV0, cid)
}

func TestPinRejectsInvalidCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"IpfsHash":""}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).PinJSON(context.Background(), pinning.JSONRequest{Content: "x"})
	assert.ErrorIs(t, err, pinning.ErrInvalidCID)
}

func TestPinErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"reason":"INVALID_CREDENTIALS"}}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).PinFile(context.Background(),
		pinning.File{Name: "a.png", Content: strings.NewReader("png")},
		pinning.Metadata{Name: "a"},
		pinning.DefaultOptions(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_CREDENTIALS")
}

func TestPinFileWithoutContent(t *testing.T) {
	_, err := newClient("http://localhost:0").PinFile(context.Background(), pinning.File{Name: "a"}, pinning.Metadata{}, pinning.DefaultOptions())
	assert.Error(t, err)
}
