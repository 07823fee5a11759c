package dto

import (
	"regexp"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var accountCodeFormat = regexp.MustCompile(`^[0-9]{4}(-[0-9]{1,4})?$`)

// RegisterValidations adds the ledger specific tags to gin's validator.
// The category range of a code is checked by the domain, which knows the type.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("account_code", func(fl validator.FieldLevel) bool {
		return accountCodeFormat.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("account_type", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).IsValid()
	})
}
