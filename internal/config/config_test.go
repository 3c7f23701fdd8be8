package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestTimeout(t *testing.T) {
	viper.Set("REQ_TIMEOUT", "")
	timeout := GetRequestTimeout()
	assert.Equal(t, timeout, defaultRequestTimeout)

	viper.Set("REQ_TIMEOUT", "14s")
	timeout = GetRequestTimeout()
	assert.Equal(t, timeout, 14*time.Second)
}

func TestPort(t *testing.T) {
	viper.Set("PORT", "")
	assert.Equal(t, defaultLocalPort, GetPort())

	viper.Set("PORT", "9000")
	assert.Equal(t, ":9000", GetPort())

	viper.Set("PORT", ":9001")
	assert.Equal(t, ":9001", GetPort())
}

func TestLegalVerifyingContractFallsBackToTokenContract(t *testing.T) {
	viper.Set("CONTRACT_ADDRESS", "0x5781d7f8fc387aD82917b6CF12b0e7A35b91f0FA")
	viper.Set("LEGAL_VERIFYING_CONTRACT", "")
	assert.Equal(t, "0x5781d7f8fc387aD82917b6CF12b0e7A35b91f0FA", GetLegalVerifyingContract())

	viper.Set("LEGAL_VERIFYING_CONTRACT", "0x1061faF91397d7B44814cEd2C2685D4a602417f5")
	assert.Equal(t, "0x1061faF91397d7B44814cEd2C2685D4a602417f5", GetLegalVerifyingContract())
}

func TestChainIDAndMintAmountDefaults(t *testing.T) {
	viper.Set("CHAIN_ID", "")
	viper.Set("MINT_AMOUNT", "")
	assert.Equal(t, int64(defaultChainID), GetChainID())
	assert.Equal(t, int64(defaultMintAmount), GetMintAmount())

	viper.Set("CHAIN_ID", "137")
	assert.Equal(t, int64(137), GetChainID())
}

func TestAllowedOrigins(t *testing.T) {
	viper.Set("ALLOWED_ORIGINS", "")
	assert.Empty(t, GetAllowedOrigins())

	viper.Set("ALLOWED_ORIGINS", "https://mint.example.com, http://localhost:3000,")
	assert.Equal(t, []string{"https://mint.example.com", "http://localhost:3000"}, GetAllowedOrigins())
}
