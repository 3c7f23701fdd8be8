package mongodb

import (
	"context"
	"errors"
	"fmt"
	"rwa-mint/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (b Repository) InsertSession(ctx context.Context, session model.Session) error {
	coll := b.collection(sessionsCollection)

	data, err := bson.Marshal(toStoredSession(session))
	if err != nil {
		return errors.New("failed to marshal the session: " + err.Error())
	}

	result, err := coll.InsertOne(ctx, data)
	if err != nil {
		return errors.New("failed to insert a new session: " + err.Error())
	}
	if result.InsertedID != session.SessionID {
		return errors.New(fmt.Sprint("inserted a session with unexpected ID: ", result.InsertedID, "; expected: ", session.SessionID))
	}

	return nil
}

func (b Repository) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	coll := b.collection(sessionsCollection)

	var stored storedSession
	err := coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Session{}, model.ErrNotFound
	}
	if err != nil {
		return model.Session{}, errors.New("failed to get the session: " + err.Error())
	}

	return stored.toModel(), nil
}

// UpdateSession replaces the whole session document. The last write wins.
func (b Repository) UpdateSession(ctx context.Context, session model.Session) error {
	coll := b.collection(sessionsCollection)

	result, err := coll.ReplaceOne(ctx, bson.M{"_id": session.SessionID}, toStoredSession(session))
	if err != nil {
		return errors.New("failed to update the session: " + err.Error())
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (b Repository) DeleteSession(ctx context.Context, sessionID string) error {
	coll := b.collection(sessionsCollection)

	result, err := coll.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		b.logger.Debug("failed to remove the session: "+err.Error(), zap.String("sessionID", sessionID))
		return err
	}

	if result.DeletedCount == 0 {
		b.logger.Debug("trying to remove non existing session", zap.String("sessionID", sessionID))
		return model.ErrNotFound
	}

	return nil
}
