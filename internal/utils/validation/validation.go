// Package validation runs go-playground/validator over request and service
// inputs. It reads the same `binding` struct tags gin uses, so a request is
// checked identically whether it arrives over HTTP or through the library API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const tagName = "binding"

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

// RegisterCustom adds the ledger-specific rules to v. It is used both for the
// package validator and for gin's binding engine.
func RegisterCustom(v *validator.Validate) error {
	// Decimals are validated as their string form; otherwise validator
	// descends into the struct and skips field-level tags.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("amount", validAmount); err != nil {
		return fmt.Errorf("failed to register 'amount': %w", err)
	}
	if err := v.RegisterValidation("account_type", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).IsValid()
	}); err != nil {
		return fmt.Errorf("failed to register 'account_type': %w", err)
	}
	if err := v.RegisterValidation("normal_side", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || domain.NormalSide(s).IsValid()
	}); err != nil {
		return fmt.Errorf("failed to register 'normal_side': %w", err)
	}
	return nil
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validAmount accepts non-negative decimals with at most two fractional digits.
func validAmount(fl validator.FieldLevel) bool {
	var value decimal.Decimal
	switch f := fl.Field().Interface().(type) {
	case decimal.Decimal:
		value = f
	case string:
		d, err := decimal.NewFromString(f)
		if err != nil {
			return false
		}
		value = d
	default:
		return false
	}
	return domain.ValidateAmount(fl.FieldName(), value) == nil
}

func getValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName(tagName)
		if err := RegisterCustom(v); err != nil {
			errValidate = err
			return
		}
		validate = v
	})
	return validate, errValidate
}

// ValidateStruct validates payload and returns an error wrapping
// apperrors.ErrValidation describing the first failing field.
func ValidateStruct(payload any) error {
	v, err := getValidator()
	if err != nil {
		return fmt.Errorf("validator initialization failed: %w", err)
	}

	if err := v.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("%w: field '%s' failed '%s=%s'", apperrors.ErrValidation, fe.Namespace(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("%w: field '%s' failed '%s'", apperrors.ErrValidation, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}
