package legal

import (
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DomainName    = "Legal Contract for RWA NFTs with Mattereum"
	DomainVersion = "1"
	Title         = "Issuance Agreement for Real World Asset Semi-fungible Tokens with Mattereum"

	PrimaryType = "LegalContract"
)

const DefaultTerms = `The issuer declares to be the lawful owner of the asset described in the token metadata and agrees that the token represents a claim on that asset.
The issuer warrants that the information provided during the issuance is accurate and complete to the best of their knowledge.
The asset remains subject to the certifications and warranties recorded for the token. Any dispute is resolved by the arbitration rules referenced by the issuance platform.`

var domainFields = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
}

var messageTypes = apitypes.Types{
	"LegalContract": {
		{Name: "title", Type: "string"},
		{Name: "parties", Type: "Party[]"},
		{Name: "terms", Type: "string"},
		{Name: "effectiveDate", Type: "uint256"},
	},
	"Party": {
		{Name: "name", Type: "string"},
		{Name: "address", Type: "address"},
	},
}

type Domain struct {
	ChainID           int64
	VerifyingContract string
}

// types lists verifyingContract in the domain only when one is set.
// An empty address can not be encoded and wallets drop the field as well.
func (d Domain) types() apitypes.Types {
	fields := append([]apitypes.Type{}, domainFields...)
	if d.VerifyingContract != "" {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}

	t := apitypes.Types{"EIP712Domain": fields}
	for name, fields := range messageTypes {
		t[name] = fields
	}
	return t
}

func (d Domain) typed() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           math.NewHexOrDecimal256(d.ChainID),
		VerifyingContract: d.VerifyingContract,
	}
}

type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Contract is the agreement the issuer signs before the metadata is pinned.
type Contract struct {
	Title         string  `json:"title"`
	Parties       []Party `json:"parties"`
	Terms         string  `json:"terms"`
	EffectiveDate int64   `json:"effectiveDate"`
}

// NewContract creates the issuance agreement with the issuer as the only party.
// Empty terms fall back to DefaultTerms.
func NewContract(firstName, lastName, walletAddress, terms string, effective time.Time) Contract {
	if strings.TrimSpace(terms) == "" {
		terms = DefaultTerms
	}

	return Contract{
		Title: Title,
		Parties: []Party{{
			Name:    strings.TrimSpace(firstName + " " + lastName),
			Address: walletAddress,
		}},
		Terms:         terms,
		EffectiveDate: effective.Unix(),
	}
}

func (c Contract) Validate() error {
	if len(c.Parties) == 0 {
		return errors.New("contract has no parties")
	}
	for _, p := range c.Parties {
		if !common.IsHexAddress(p.Address) {
			return errors.New("invalid party address: " + p.Address)
		}
	}
	if c.EffectiveDate <= 0 {
		return errors.New("contract has no effective date")
	}
	return nil
}

// TypedData returns the EIP-712 structure a wallet signs with eth_signTypedData_v4.
func (c Contract) TypedData(domain Domain) apitypes.TypedData {
	parties := make([]interface{}, 0, len(c.Parties))
	for _, p := range c.Parties {
		parties = append(parties, map[string]interface{}{
			"name":    p.Name,
			"address": p.Address,
		})
	}

	return apitypes.TypedData{
		Types:       domain.types(),
		PrimaryType: PrimaryType,
		Domain:      domain.typed(),
		Message: apitypes.TypedDataMessage{
			"title":         c.Title,
			"parties":       parties,
			"terms":         c.Terms,
			"effectiveDate": strconv.FormatInt(c.EffectiveDate, 10),
		},
	}
}

// Agreement is the signed contract document pinned to IPFS. Its CID becomes
// the contract URI of the token.
type Agreement struct {
	Domain    apitypes.TypedDataDomain `json:"domain"`
	Contract  Contract                 `json:"contract"`
	Signature string                   `json:"signature"`
	Signer    string                   `json:"signer"`
}

func NewAgreement(c Contract, domain Domain, signature string, signer common.Address) Agreement {
	return Agreement{
		Domain:    domain.typed(),
		Contract:  c,
		Signature: signature,
		Signer:    signer.Hex(),
	}
}

func (a Agreement) JSON() ([]byte, error) {
	dump, err := json.Marshal(a)
	if err != nil {
		return nil, errors.New("failed to marshal the agreement: " + err.Error())
	}
	return dump, nil
}

func chainID(d apitypes.TypedDataDomain) *big.Int {
	if d.ChainId == nil {
		return nil
	}
	return (*big.Int)(d.ChainId)
}
