package oracle

import (
	"errors"
	"io/ioutil"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"
)

const DefaultGasLimit = 500000

// RequestConfig is the yaml definition of the request pushed to the consumer contract.
type RequestConfig struct {
	// Source is the path of the JavaScript source, relative to the config file.
	Source           string   `yaml:"source"`
	DonID            string   `yaml:"donId"`
	SubscriptionID   uint64   `yaml:"subscriptionId"`
	GasLimit         uint32   `yaml:"gasLimit"`
	SecretsLocation  string   `yaml:"secretsLocation"`
	SecretsReference string   `yaml:"secretsReference"`
	Args             []string `yaml:"args"`
	BytesArgs        []string `yaml:"bytesArgs"`

	dir string
}

func LoadRequestConfig(path string) (RequestConfig, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return RequestConfig{}, errors.New("failed to read the request config: " + err.Error())
	}

	var config RequestConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return RequestConfig{}, errors.New("failed to parse the request config: " + err.Error())
	}

	if config.Source == "" {
		return RequestConfig{}, errors.New("request config has no source")
	}
	if config.DonID == "" {
		return RequestConfig{}, errors.New("request config has no donId")
	}
	if config.SubscriptionID == 0 {
		return RequestConfig{}, errors.New("request config has no subscriptionId")
	}
	if config.GasLimit == 0 {
		config.GasLimit = DefaultGasLimit
	}

	config.dir = filepath.Dir(path)

	return config, nil
}

// BuildRequest reads the source file and decodes the hex arguments.
func (c RequestConfig) BuildRequest() (Request, error) {
	sourcePath := c.Source
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(c.dir, sourcePath)
	}

	source, err := ioutil.ReadFile(sourcePath)
	if err != nil {
		return Request{}, errors.New("failed to read the source: " + err.Error())
	}

	request := Request{
		CodeLocation: LocationInline,
		Language:     CodeLanguageJavaScript,
		Source:       string(source),
		Args:         c.Args,
	}

	if c.SecretsReference != "" {
		if request.SecretsLocation, err = ParseLocation(c.SecretsLocation); err != nil {
			return Request{}, err
		}
		if request.SecretsReference, err = hexutil.Decode(c.SecretsReference); err != nil {
			return Request{}, errors.New("invalid secrets reference: " + err.Error())
		}
	}

	for _, arg := range c.BytesArgs {
		decoded, err := hexutil.Decode(arg)
		if err != nil {
			return Request{}, errors.New("invalid bytes argument " + arg + ": " + err.Error())
		}
		request.BytesArgs = append(request.BytesArgs, decoded)
	}

	return request, request.Validate()
}
