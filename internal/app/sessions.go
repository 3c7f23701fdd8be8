package app

import (
	"context"
	"errors"
	"io"
	"rwa-mint/internal/metadata"
	"rwa-mint/internal/metrics"
	"rwa-mint/internal/model"
	"rwa-mint/internal/pinning"
	"rwa-mint/internal/wizard"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type NavigationAction string

const (
	ActionNext     NavigationAction = "next"
	ActionPrevious NavigationAction = "previous"
	ActionGoTo     NavigationAction = "goto"
)

// Upload is an image sent by the user for the asset.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

func (a *App) CreateSession(ctx context.Context, owner string) (model.Session, error) {
	if owner != "" && !common.IsHexAddress(owner) {
		return model.Session{}, invalid(errors.New("owner is not a wallet address: " + owner))
	}

	session := model.NewSession(owner, a.now())
	if err := a.store.InsertSession(ctx, session); err != nil {
		return model.Session{}, err
	}

	a.logger.Info("session created", zap.String("sessionID", session.SessionID), zap.String("owner", owner))
	metrics.IncStep(session.Step.String())

	return session, nil
}

func (a *App) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	return a.store.GetSession(ctx, sessionID)
}

// DeleteSession discards a draft. Once a mint transaction was sent the session
// is the record of it and stays. Pinned submissions are never removed.
func (a *App) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.MintTxHash != "" || session.MintBlockHash != "" {
		return invalid(ErrAlreadyMinted)
	}

	if err := a.store.DeleteSession(ctx, sessionID); err != nil {
		a.logger.Error("failed to delete the session: "+err.Error(), zap.String("sessionID", sessionID))
		return err
	}

	a.logger.Info("session deleted", zap.String("sessionID", sessionID))
	return nil
}

// UpdateFields applies the edited form fields. A new asset location refreshes
// the property data when the property API is the data source. A failed fetch
// still stores the fields and is returned after them.
func (a *App) UpdateFields(ctx context.Context, sessionID string, fields map[string]string) (model.Session, error) {
	if len(fields) == 0 {
		return model.Session{}, invalid(errors.New("no fields given"))
	}

	var fetchErr error
	session, err := a.update(ctx, sessionID, func(session *model.Session) error {
		before := session.Form.Get(model.FieldAssetLocation)

		controller := wizard.New(session)
		for name, value := range fields {
			if err := controller.SetField(name, value); err != nil {
				return invalid(err)
			}
		}

		if session.UsesAPI() && session.Form.Get(model.FieldAssetLocation) != before {
			fetchErr = a.fetchPropertyData(ctx, session)
		}
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}

	return session, fetchErr
}

// UploadImage pins the asset image and keeps its CID in the form.
func (a *App) UploadImage(ctx context.Context, sessionID string, upload Upload) (model.Session, error) {
	if upload.Content == nil {
		return model.Session{}, invalid(errors.New("image is missing"))
	}

	return a.update(ctx, sessionID, func(session *model.Session) error {
		cid, err := a.pinner.PinFile(ctx,
			pinning.File{Name: upload.Name, Content: upload.Content},
			metadata.ImagePinMetadata(session.Title(), session.Category()),
			pinning.DefaultOptions(),
		)
		metrics.IncPin("image", err)
		if err != nil {
			a.logger.Error("failed to pin the image: "+err.Error(), zap.String("sessionID", session.SessionID))
			return err
		}

		controller := wizard.New(session)
		controller.SetFile(model.FileAssetImage, model.File{
			Name:        upload.Name,
			ContentType: upload.ContentType,
			Size:        upload.Size,
			CID:         cid,
		})
		return controller.SetField(model.FieldUploadedImage, cid)
	})
}

// SetDataSource switches between the property API and manual attributes.
func (a *App) SetDataSource(ctx context.Context, sessionID string, useAPI bool) (model.Session, error) {
	var fetchErr error
	session, err := a.update(ctx, sessionID, func(session *model.Session) error {
		wizard.New(session).SetUseAPI(useAPI)

		if useAPI && len(session.APIData) == 0 && session.Form.Get(model.FieldAssetLocation) != "" {
			fetchErr = a.fetchPropertyData(ctx, session)
		}
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}

	return session, fetchErr
}

func (a *App) fetchPropertyData(ctx context.Context, session *model.Session) error {
	session.APIData = nil

	location := session.Form.Get(model.FieldAssetLocation)
	if location == "" {
		return nil
	}

	data, err := a.properties.BasicProfile(ctx, location)
	if err != nil {
		a.logger.Warn("failed to fetch the property data: "+err.Error(), zap.String("sessionID", session.SessionID), zap.String("location", location))
		return err
	}

	session.APIData = data
	return nil
}

// PropertyValuation returns the estimated value of the asset at the session location.
func (a *App) PropertyValuation(ctx context.Context, sessionID string) (string, error) {
	session, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	location := session.Form.Get(model.FieldAssetLocation)
	if location == "" {
		return "", invalid(errors.New(model.FieldAssetLocation + " is missing"))
	}

	return a.properties.HomeEquityValue(ctx, location)
}

func (a *App) AddManualField(ctx context.Context, sessionID string) (model.Session, error) {
	return a.update(ctx, sessionID, func(session *model.Session) error {
		wizard.New(session).AddManualField()
		return nil
	})
}

func (a *App) ChangeManualField(ctx context.Context, sessionID string, index int, part wizard.FieldPart, value string) (model.Session, error) {
	return a.update(ctx, sessionID, func(session *model.Session) error {
		if err := wizard.New(session).ChangeManualField(index, part, value); err != nil {
			return invalid(err)
		}
		return nil
	})
}

func (a *App) RemoveManualField(ctx context.Context, sessionID string, index int) (model.Session, error) {
	return a.update(ctx, sessionID, func(session *model.Session) error {
		if err := wizard.New(session).RemoveManualField(index); err != nil {
			return invalid(err)
		}
		return nil
	})
}

// Navigate moves the wizard. step is only used by ActionGoTo.
func (a *App) Navigate(ctx context.Context, sessionID string, action NavigationAction, step model.Step) (model.Session, error) {
	return a.update(ctx, sessionID, func(session *model.Session) error {
		controller := wizard.New(session)

		var err error
		switch action {
		case ActionNext:
			err = controller.Next()
		case ActionPrevious:
			err = controller.Previous()
		case ActionGoTo:
			err = controller.GoTo(step)
		default:
			err = errors.New("unknown navigation action: " + string(action))
		}
		if err != nil {
			return invalid(err)
		}

		metrics.IncStep(session.Step.String())
		a.logger.Debug("step changed", zap.String("sessionID", session.SessionID), zap.Stringer("step", session.Step))
		return nil
	})
}
