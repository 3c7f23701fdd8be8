package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"rwa-mint/internal/hashing"
	"rwa-mint/internal/metadata"
	"rwa-mint/internal/metrics"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"rwa-mint/internal/wizard"

	"go.uber.org/zap"
)

// Submit renders and pins the thumbnail, then assembles and pins the metadata.
// The pinned bytes are stored with their hash and the wizard moves to minting.
func (a *App) Submit(ctx context.Context, sessionID string) (model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	return a.update(ctx, sessionID, func(session *model.Session) error {
		if err := wizard.Complete(*session, model.StepSubmit); err != nil {
			return invalid(err)
		}
		if session.MintTxHash != "" {
			return invalid(ErrAlreadyMinted)
		}

		thumbnailCID, err := a.pinThumbnail(ctx, *session)
		if err != nil {
			return err
		}

		input := metadata.Input{
			Form:          session.Form,
			ImageCID:      thumbnailCID,
			LegalContract: session.LegalContract,
		}
		if session.UsesAPI() {
			input.APIData = session.APIData
		} else {
			input.ManualFields = session.ManualFields
		}

		assembled, err := metadata.Assemble(input)
		if err != nil {
			return invalid(err)
		}

		content, err := json.Marshal(assembled)
		if err != nil {
			return errors.New("failed to marshal the metadata: " + err.Error())
		}

		request := metadata.Envelope(assembled, a.now())
		request.Content = json.RawMessage(content)

		metadataCID, err := a.pinner.PinJSON(ctx, request)
		metrics.IncPin("metadata", err)
		if err != nil {
			a.logger.Error("failed to pin the metadata: "+err.Error(), zap.String("sessionID", session.SessionID))
			return err
		}

		submission := model.Submission{
			MetadataCID:  metadataCID,
			SessionID:    session.SessionID,
			Metadata:     content,
			MetadataHash: hashing.Calculate(content),
			ImageCID:     thumbnailCID,
			Status:       model.SubmissionStatusActive,
			CreatedAt:    a.now(),
		}
		if err := a.store.InsertSubmission(ctx, submission); err != nil && !errors.Is(err, model.ErrAlreadyExists) {
			return err
		}

		session.ThumbnailCID = thumbnailCID
		session.MetadataCID = metadataCID
		session.MetadataHash = submission.MetadataHash

		if err := wizard.New(session).Submitted(); err != nil {
			return err
		}
		metrics.IncStep(session.Step.String())

		a.logger.Info("metadata submitted", zap.String("sessionID", session.SessionID), zap.String("metadataCID", metadataCID))
		return nil
	})
}

func (a *App) pinThumbnail(ctx context.Context, session model.Session) (string, error) {
	svg, err := metadata.RenderThumbnail(metadata.Thumbnail{
		Image:    metadata.IPFSURI(session.Form.Get(model.FieldUploadedImage)),
		Category: session.Category(),
	})
	if err != nil {
		return "", err
	}

	cid, err := a.pinner.PinFile(ctx,
		pinning.File{Name: metadata.ThumbnailFilename, Content: bytes.NewReader(svg)},
		metadata.ThumbnailPinMetadata(session.Title(), session.Category()),
		pinning.DefaultOptions(),
	)
	metrics.IncPin("thumbnail", err)
	if err != nil {
		a.logger.Error("failed to pin the thumbnail: "+err.Error(), zap.String("sessionID", session.SessionID))
		return "", err
	}

	return cid, nil
}

// GetSubmission returns stored metadata. A submission whose content no longer
// matches its hash is marked invalid.
func (a *App) GetSubmission(ctx context.Context, metadataCID string) (model.Submission, error) {
	submission, err := a.store.GetSubmission(ctx, metadataCID)
	if err != nil {
		return model.Submission{}, err
	}

	if submission.Status == model.SubmissionStatusActive && !hashing.Matches(submission.Metadata, submission.MetadataHash) {
		a.logger.Warn("submission content does not match its hash", zap.String("cid", metadataCID), zap.String("sessionID", submission.SessionID))

		if err := a.store.MarkSubmissionInvalid(ctx, metadataCID); err != nil {
			a.logger.Error("failed to mark the submission invalid: "+err.Error(), zap.String("cid", metadataCID))
		}
		submission.Status = model.SubmissionStatusInvalid
	}

	return submission, nil
}
