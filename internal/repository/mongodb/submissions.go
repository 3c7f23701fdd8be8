package mongodb

import (
	"context"
	"errors"
	"rwa-mint/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InsertSubmission stores the pinned metadata. Submissions are write-once,
// pinning the same content twice yields the same CID and is rejected here.
func (b Repository) InsertSubmission(ctx context.Context, submission model.Submission) error {
	coll := b.collection(submissionsCollection)

	_, err := coll.InsertOne(ctx, toStoredSubmission(submission))
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return errors.New("failed to insert the submission: " + err.Error())
	}

	b.logger.Debug("submission stored", zap.String("cid", submission.MetadataCID), zap.String("sessionID", submission.SessionID))

	return nil
}

func (b Repository) GetSubmission(ctx context.Context, metadataCID string) (model.Submission, error) {
	coll := b.collection(submissionsCollection)

	var stored storedSubmission
	err := coll.FindOne(ctx, bson.M{"_id": metadataCID}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Submission{}, model.ErrNotFound
	}
	if err != nil {
		return model.Submission{}, errors.New("failed to get the submission: " + err.Error())
	}

	return stored.toModel(), nil
}

// MarkSubmissionInvalid flags a submission whose stored content no longer
// matches its hash.
func (b Repository) MarkSubmissionInvalid(ctx context.Context, metadataCID string) error {
	coll := b.collection(submissionsCollection)

	update := bson.M{"$set": bson.M{"status": model.SubmissionStatusInvalid.String()}}
	result, err := coll.UpdateOne(ctx, bson.M{"_id": metadataCID}, update)
	if err != nil {
		return errors.New("failed to update the submission status: " + err.Error())
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}
