package domain

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount bound to a currency. The zero value is not
// valid; use NewMoney or Zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

var two = decimal.NewFromInt(2)

// NewMoney builds a Money value. Amounts finer than the currency scale are rejected.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if err := ValidateCurrencyCode(currency); err != nil {
		return Money{}, err
	}
	scale := CurrencyScale(currency)
	if !amount.Equal(amount.Truncate(scale)) {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimal places for %s", apperrors.ErrExcessPrecision, amount.String(), scale, currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal string such as "100.00".
func NewMoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: amount %q is not a decimal", apperrors.ErrInvalidAmount, amount)
	}
	return NewMoney(d, currency)
}

// MustMoney is NewMoneyFromString for constants and tests; it panics on error.
func MustMoney(amount, currency string) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) Scale() int32            { return CurrencyScale(m.currency) }

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", apperrors.ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply scales m by factor using banker's rounding.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).RoundBank(m.Scale()), currency: m.currency}
}

// Divide returns m / divisor rounded half-to-even at the currency scale.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("%w: %s / 0", apperrors.ErrDivisionByZero, m.String())
	}
	return Money{amount: divideBank(m.amount, divisor, m.Scale()), currency: m.currency}, nil
}

// divideBank divides exactly and rounds half-to-even, without the intermediate
// precision cap of decimal.Div.
func divideBank(dividend, divisor decimal.Decimal, scale int32) decimal.Decimal {
	q, r := dividend.QuoRem(divisor, scale)
	if r.IsZero() {
		return q
	}
	unit := decimal.New(1, -scale)
	cmp := r.Abs().Mul(two).Cmp(divisor.Abs().Mul(unit))
	odd := q.Shift(scale).BigInt().Bit(0) == 1
	if cmp > 0 || (cmp == 0 && odd) {
		if dividend.Sign()*divisor.Sign() < 0 {
			return q.Sub(unit)
		}
		return q.Add(unit)
	}
	return q
}

// Negate flips the sign.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs drops the sign.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Compare returns -1, 0 or +1.
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports same currency and same amount.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Distribute splits m into n parts that sum exactly to m. Leftover minor units
// go one each to the first parts.
func (m Money) Distribute(n int) ([]Money, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot distribute into %d parts", apperrors.ErrInvalidAmount, n)
	}
	scale := m.Scale()
	units := m.amount.Shift(scale)
	base, rem := units.QuoRem(decimal.NewFromInt(int64(n)), 0)
	extra := rem.Abs().IntPart()
	step := decimal.NewFromInt(int64(m.amount.Sign()))

	parts := make([]Money, n)
	for i := range parts {
		share := base
		if int64(i) < extra {
			share = share.Add(step)
		}
		parts[i] = Money{amount: share.Shift(-scale), currency: m.currency}
	}
	return parts, nil
}

// ConvertTo converts m using an externally supplied rate (units of target per unit of m).
func (m Money) ConvertTo(currency string, rate decimal.Decimal) (Money, error) {
	if err := ValidateCurrencyCode(currency); err != nil {
		return Money{}, err
	}
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("%w: exchange rate %s must be positive", apperrors.ErrInvalidAmount, rate.String())
	}
	return Money{amount: m.amount.Mul(rate).RoundBank(CurrencyScale(currency)), currency: currency}, nil
}

// Sum adds amounts that must all be in currency.
func Sum(currency string, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (m Money) String() string {
	return m.amount.StringFixed(m.Scale()) + " " + m.currency
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(m.Scale()), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
