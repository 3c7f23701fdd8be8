package wizard_test

import (
	"encoding/json"
	"rwa-mint/internal/model"
	"rwa-mint/internal/wizard"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const wallet = "0x5781d7f8fc387aD82917b6CF12b0e7A35b91f0FA"

func newSession() *model.Session {
	session := model.NewSession(wallet, time.Now())
	return &session
}

func fillRegister(t *testing.T, c wizard.Controller) {
	require.NoError(t, c.SetField(model.FieldFirstName, "Ada"))
	require.NoError(t, c.SetField(model.FieldLastName, "Lovelace"))
}

func TestSetField(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	require.NoError(t, c.SetField("assetName", "  RWA test "))
	assert.Equal(t, "RWA test", session.Form.Get(model.FieldAssetName))

	require.NoError(t, c.SetField(model.FieldAssetType, "option3"))
	assert.Equal(t, "Art & Collectibles", session.Form.Get(model.FieldAssetType))

	require.NoError(t, c.SetField(model.FieldRole, "seller"))
	assert.Equal(t, "Seller", session.Form.Get(model.FieldRole))

	assert.Error(t, c.SetField(model.FieldAssetType, "spaceship"))
	assert.Equal(t, "Art & Collectibles", session.Form.Get(model.FieldAssetType))

	assert.ErrorIs(t, c.SetField(" ", "x"), wizard.ErrEmptyFieldName)

	require.NoError(t, c.SetField("customField", "kept"))
	assert.Equal(t, "kept", session.Form.Get("customField"))
}

func TestNavigationBounds(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	assert.ErrorIs(t, c.Previous(), wizard.ErrFirstStep)
	assert.Equal(t, model.StepRegister, session.Step)

	err := c.Next()
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 2, "firstName and lastName are missing")
	assert.Equal(t, model.StepRegister, session.Step)

	fillRegister(t, c)
	require.NoError(t, c.Next())
	assert.Equal(t, model.StepAssetType, session.Step)
	assert.Equal(t, model.StepAssetType, session.FurthestStep)

	require.NoError(t, c.Previous())
	assert.Equal(t, model.StepRegister, session.Step)
	assert.Equal(t, model.StepAssetType, session.FurthestStep)
}

func TestInvalidWalletBlocksRegister(t *testing.T) {
	session := newSession()
	c := wizard.New(session)
	fillRegister(t, c)
	require.NoError(t, c.SetField(model.FieldWalletAddress, "not-an-address"))

	assert.Error(t, c.Next())
	assert.Equal(t, model.StepRegister, session.Step)
}

func TestDetailsStepNeedsDataSource(t *testing.T) {
	session := newSession()
	c := wizard.New(session)
	fillRegister(t, c)
	require.NoError(t, c.SetField(model.FieldAssetType, "Real Estate"))
	require.NoError(t, c.SetField(model.FieldAssetName, "RWA test"))
	require.NoError(t, c.SetField(model.FieldAssetLocation, "43 5th Ave, New York, NY, 10003"))

	require.NoError(t, c.Next())
	require.NoError(t, c.Next())
	assert.Equal(t, model.StepDetails, session.Step)
	assert.Error(t, c.Next(), "source not chosen")

	c.SetUseAPI(true)
	assert.Error(t, c.Next(), "api data not fetched")

	session.APIData = json.RawMessage(`{"property":[]}`)
	require.NoError(t, c.Next())
	assert.Equal(t, model.StepLegalContract, session.Step)

	c.SetUseAPI(false)
	assert.Nil(t, session.APIData)
	assert.Error(t, wizard.Validate(*session, model.StepDetails), "the empty manual field has no key")

	require.NoError(t, c.ChangeManualField(0, wizard.PartKey, "bedrooms"))
	require.NoError(t, c.ChangeManualField(0, wizard.PartValue, "3"))
	assert.NoError(t, wizard.Validate(*session, model.StepDetails))
}

func TestGoToRequiresPreviousSteps(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	assert.Error(t, c.GoTo(model.StepAssetType))
	assert.ErrorIs(t, c.GoTo(model.Step(0)), wizard.ErrInvalidStep)
	assert.ErrorIs(t, c.GoTo(model.Step(7)), wizard.ErrInvalidStep)
	require.NoError(t, c.GoTo(model.StepRegister))

	fillRegister(t, c)
	require.NoError(t, c.GoTo(model.StepAssetType))
	assert.Equal(t, model.StepAssetType, session.Step)
}

func TestGoToStopsAfterFurthestStep(t *testing.T) {
	session := newSession()
	c := wizard.New(session)
	fillRegister(t, c)
	require.NoError(t, c.SetField(model.FieldAssetType, "Real Estate"))
	require.NoError(t, c.SetField(model.FieldAssetName, "RWA test"))
	require.NoError(t, c.SetField(model.FieldAssetLocation, "43 5th Ave, New York, NY, 10003"))
	c.SetUseAPI(false)
	require.NoError(t, c.ChangeManualField(0, wizard.PartKey, "bedrooms"))

	// every field is filled but only the first step was reached
	assert.ErrorIs(t, c.GoTo(model.StepDetails), wizard.ErrStepNotReached)
	assert.Equal(t, model.StepRegister, session.Step)
	assert.Equal(t, model.StepRegister, session.FurthestStep)

	require.NoError(t, c.GoTo(model.StepAssetType))
	require.NoError(t, c.GoTo(model.StepDetails))
	assert.Equal(t, model.StepDetails, session.FurthestStep)
	assert.ErrorIs(t, c.GoTo(model.StepSubmit), wizard.ErrStepNotReached)
}

func TestSubmittedNeedsPinnedMetadata(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	assert.Error(t, c.Submitted())
	assert.Equal(t, model.StepRegister, session.Step)
}

func TestLastStep(t *testing.T) {
	session := newSession()
	session.Step = model.StepMint
	c := wizard.New(session)

	assert.ErrorIs(t, c.Next(), wizard.ErrLastStep)
	assert.NoError(t, wizard.Validate(*session, model.StepMint))
}

func TestLaterSteps(t *testing.T) {
	session := newSession()

	assert.Error(t, wizard.Validate(*session, model.StepLegalContract))
	session.LegalContract = &model.LegalContractData{Signature: "0x01", ContractURI: "bafy"}
	assert.NoError(t, wizard.Validate(*session, model.StepLegalContract))

	assert.Error(t, wizard.Validate(*session, model.StepSubmit))
	session.MetadataCID = "bafy"
	assert.NoError(t, wizard.Validate(*session, model.StepSubmit))
}

func TestManualFields(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	c.AddManualField()
	c.AddManualField()
	require.Len(t, session.ManualFields, 3)

	require.NoError(t, c.ChangeManualField(0, wizard.PartKey, "a"))
	require.NoError(t, c.ChangeManualField(1, wizard.PartKey, "b"))
	require.NoError(t, c.ChangeManualField(2, wizard.PartKey, "c"))

	require.NoError(t, c.RemoveManualField(1))
	assert.Equal(t, []model.Attribute{{Key: "a"}, {Key: "c"}}, session.ManualFields)

	assert.ErrorIs(t, c.RemoveManualField(2), wizard.ErrFieldIndex)
	assert.ErrorIs(t, c.ChangeManualField(-1, wizard.PartKey, "x"), wizard.ErrFieldIndex)
	assert.ErrorIs(t, c.ChangeManualField(0, "other", "x"), wizard.ErrFieldPart)
}

func TestComplete(t *testing.T) {
	session := newSession()
	c := wizard.New(session)

	assert.NoError(t, wizard.Complete(*session, model.StepRegister))
	assert.Error(t, wizard.Complete(*session, model.StepAssetType))

	fillRegister(t, c)
	assert.NoError(t, wizard.Complete(*session, model.StepAssetType))
}
