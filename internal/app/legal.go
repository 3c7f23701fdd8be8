package app

import (
	"context"
	"encoding/json"
	"errors"
	"rwa-mint/internal/legal"
	"rwa-mint/internal/metrics"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"rwa-mint/internal/wizard"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"
)

// LegalContract returns the typed data the user signs with the wallet. The
// effective date is fixed the first time the contract is requested so the
// signature can be verified later.
func (a *App) LegalContract(ctx context.Context, sessionID string) (apitypes.TypedData, error) {
	var typedData apitypes.TypedData
	_, err := a.update(ctx, sessionID, func(session *model.Session) error {
		if err := wizard.Validate(*session, model.StepRegister); err != nil {
			return invalid(err)
		}

		if session.ContractIssuedAt.IsZero() {
			session.ContractIssuedAt = a.now()
		}

		contract, err := a.contract(*session)
		if err != nil {
			return err
		}

		typedData = contract.TypedData(a.config.LegalDomain)
		return nil
	})

	return typedData, err
}

// SignLegalContract verifies the wallet signature, pins the signed agreement and
// stores the signature with the agreement CID.
func (a *App) SignLegalContract(ctx context.Context, sessionID, signature string) (model.Session, error) {
	return a.update(ctx, sessionID, func(session *model.Session) error {
		if session.ContractIssuedAt.IsZero() {
			return invalid(errors.New("legal contract was not requested"))
		}
		if err := wizard.Validate(*session, model.StepRegister); err != nil {
			return invalid(err)
		}

		contract, err := a.contract(*session)
		if err != nil {
			return err
		}
		wallet := session.Form.Get(model.FieldWalletAddress)

		signer, err := legal.VerifySignature(contract.TypedData(a.config.LegalDomain), signature, wallet)
		if err != nil {
			a.logger.Info("legal contract signature rejected: "+err.Error(), zap.String("sessionID", session.SessionID))
			return invalid(err)
		}

		agreement, err := legal.NewAgreement(contract, a.config.LegalDomain, signature, signer).JSON()
		if err != nil {
			return err
		}

		contractURI, err := a.pinner.PinJSON(ctx, pinning.JSONRequest{
			Content: json.RawMessage(agreement),
			Metadata: pinning.Metadata{
				Name: "Legal Contract for RWA NFT " + session.Title() + " " + session.Category(),
				KeyValues: map[string]string{
					"date": a.now().Format("2006-01-02"),
				},
			},
			Options: pinning.DefaultOptions(),
		})
		metrics.IncPin("legalContract", err)
		if err != nil {
			a.logger.Error("failed to pin the legal contract: "+err.Error(), zap.String("sessionID", session.SessionID))
			return err
		}

		session.LegalContract = &model.LegalContractData{
			Signature:   signature,
			ContractURI: contractURI,
		}

		a.logger.Info("legal contract signed", zap.String("sessionID", session.SessionID), zap.String("signer", signer.Hex()), zap.String("contractURI", contractURI))
		return nil
	})
}

func (a *App) contract(session model.Session) (legal.Contract, error) {
	contract := legal.NewContract(
		session.Form.Get(model.FieldFirstName),
		session.Form.Get(model.FieldLastName),
		session.Form.Get(model.FieldWalletAddress),
		a.config.LegalTerms,
		session.ContractIssuedAt,
	)
	if err := contract.Validate(); err != nil {
		return legal.Contract{}, invalid(errors.New("legal contract is not valid: " + err.Error()))
	}
	return contract, nil
}
