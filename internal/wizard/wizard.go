// Package wizard drives the minting form: field edits, manual attributes and
// the navigation between steps.
package wizard

import (
	"errors"
	"fmt"
	"rwa-mint/internal/model"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/multierr"
)

type FieldPart string

const (
	PartKey   FieldPart = "key"
	PartValue FieldPart = "value"
)

var (
	ErrFirstStep      = errors.New("already at the first step")
	ErrLastStep       = errors.New("already at the last step")
	ErrInvalidStep    = errors.New("invalid step")
	ErrStepNotReached = errors.New("step not reached yet")
	ErrFieldIndex     = errors.New("manual field index out of range")
	ErrFieldPart      = errors.New("manual field part must be key or value")
	ErrEmptyFieldName = errors.New("field name is empty")
)

// Controller mutates the session it wraps. It does not persist anything.
type Controller struct {
	session *model.Session
}

func New(session *model.Session) Controller {
	if session.Form.Fields == nil {
		session.Form = model.NewFormState()
	}
	return Controller{session: session}
}

// SetField is the generic input change handler.
func (c Controller) SetField(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFieldName
	}
	value = strings.TrimSpace(value)

	switch name {
	case model.FieldAssetType:
		if value != "" {
			category, ok := model.AssetCategory(value)
			if !ok {
				return errors.New("unknown asset type: " + value)
			}
			value = category
		}
	case model.FieldRole:
		value = model.TitleCaseRole(value)
	}

	c.session.Form.Fields[name] = value
	return nil
}

func (c Controller) SetFile(name string, file model.File) {
	if c.session.Form.Files == nil {
		c.session.Form.Files = make(map[string]model.File)
	}
	c.session.Form.Files[name] = file
}

// SetUseAPI records the data source choice. Switching source drops what the
// other source produced so the metadata never mixes both.
func (c Controller) SetUseAPI(useAPI bool) {
	c.session.UseAPI = &useAPI
	if !useAPI {
		c.session.APIData = nil
	}
	if len(c.session.ManualFields) == 0 {
		c.session.ManualFields = []model.Attribute{{}}
	}
}

func (c Controller) AddManualField() {
	c.session.ManualFields = append(c.session.ManualFields, model.Attribute{})
}

func (c Controller) ChangeManualField(index int, part FieldPart, value string) error {
	if index < 0 || index >= len(c.session.ManualFields) {
		return fmt.Errorf("%w: %d", ErrFieldIndex, index)
	}

	switch part {
	case PartKey:
		c.session.ManualFields[index].Key = value
	case PartValue:
		c.session.ManualFields[index].Value = value
	default:
		return ErrFieldPart
	}

	return nil
}

func (c Controller) RemoveManualField(index int) error {
	if index < 0 || index >= len(c.session.ManualFields) {
		return fmt.Errorf("%w: %d", ErrFieldIndex, index)
	}

	fields := make([]model.Attribute, 0, len(c.session.ManualFields)-1)
	fields = append(fields, c.session.ManualFields[:index]...)
	fields = append(fields, c.session.ManualFields[index+1:]...)
	c.session.ManualFields = fields

	return nil
}

// Next advances one step once the current step is complete.
func (c Controller) Next() error {
	current := c.session.Step
	if current >= model.LastStep {
		return ErrLastStep
	}

	if err := Validate(*c.session, current); err != nil {
		return err
	}

	c.moveTo(current + 1)
	return nil
}

func (c Controller) Previous() error {
	if c.session.Step <= model.FirstStep {
		return ErrFirstStep
	}

	c.moveTo(c.session.Step - 1)
	return nil
}

// GoTo jumps to a step reached before, or to the one after the furthest,
// when all the preceding steps are complete.
func (c Controller) GoTo(step model.Step) error {
	if !step.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	if step > c.session.FurthestStep+1 {
		return fmt.Errorf("%w: %s", ErrStepNotReached, step)
	}

	for s := model.FirstStep; s < step; s++ {
		if err := Validate(*c.session, s); err != nil {
			return errors.New("can't go to step " + step.String() + ": " + err.Error())
		}
	}

	c.moveTo(step)
	return nil
}

// Submitted moves to the mint step once the metadata is pinned.
func (c Controller) Submitted() error {
	if err := Complete(*c.session, model.StepMint); err != nil {
		return err
	}

	c.moveTo(model.StepMint)
	return nil
}

// Complete checks every step before the given one.
func Complete(session model.Session, before model.Step) error {
	for s := model.FirstStep; s < before; s++ {
		if err := Validate(session, s); err != nil {
			return err
		}
	}
	return nil
}

func (c Controller) moveTo(step model.Step) {
	c.session.Step = step
	if step > c.session.FurthestStep {
		c.session.FurthestStep = step
	}
}

// Validate returns all the problems preventing the user from leaving the step.
func Validate(session model.Session, step model.Step) error {
	var err error

	required := func(fields ...string) {
		for _, field := range fields {
			if session.Form.Get(field) == "" {
				err = multierr.Append(err, errors.New(field+" is missing"))
			}
		}
	}

	switch step {
	case model.StepRegister:
		required(model.FieldFirstName, model.FieldLastName, model.FieldWalletAddress)
		if addr := session.Form.Get(model.FieldWalletAddress); addr != "" && !common.IsHexAddress(addr) {
			err = multierr.Append(err, errors.New("walletAddress is not a valid address: "+addr))
		}

	case model.StepAssetType:
		required(model.FieldAssetType)

	case model.StepDetails:
		required(model.FieldAssetName, model.FieldAssetLocation)
		switch {
		case session.UseAPI == nil:
			err = multierr.Append(err, errors.New("choose between the property API and manual details"))
		case *session.UseAPI && len(session.APIData) == 0:
			err = multierr.Append(err, errors.New("property data not fetched yet"))
		case !*session.UseAPI && !hasManualField(session.ManualFields):
			err = multierr.Append(err, errors.New("at least one detail with a key is required"))
		}

	case model.StepLegalContract:
		if session.LegalContract == nil || session.LegalContract.Signature == "" {
			err = multierr.Append(err, errors.New("legal contract is not signed"))
		}

	case model.StepSubmit:
		if session.MetadataCID == "" {
			err = multierr.Append(err, errors.New("metadata is not pinned to IPFS"))
		}

	case model.StepMint:

	default:
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}

	return err
}

func hasManualField(fields []model.Attribute) bool {
	for _, f := range fields {
		if strings.TrimSpace(f.Key) != "" {
			return true
		}
	}
	return false
}
