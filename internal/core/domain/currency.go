package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

const defaultMinorUnits int32 = 2

// minorUnitOverrides lists currencies whose minor unit scale is not 2.
var minorUnitOverrides = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// CurrencyScale returns the number of decimal places for code.
func CurrencyScale(code string) int32 {
	if units, ok := minorUnitOverrides[code]; ok {
		return units
	}
	return defaultMinorUnits
}

// ValidateCurrencyCode checks for three upper-case ASCII letters.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("%w: currency code %q must have three letters", apperrors.ErrValidation, code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return fmt.Errorf("%w: currency code %q must be upper-case letters", apperrors.ErrValidation, code)
		}
	}
	return nil
}
