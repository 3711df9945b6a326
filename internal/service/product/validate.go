package product

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxOptions           = 3
	MaxChoiceLength      = 30

	moneyScale = 2
)

func invalid(format string, args ...any) error {
	return apperrors.ErrProductInvalid.WithMessage(fmt.Sprintf(format, args...))
}

// Round money half up to cents, negative amounts are invalid
func normalizeMoney(field string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return amount, invalid("%s must not be negative", field)
	}
	// Round is half away from zero, equal to half up for non negative amounts
	return amount.Round(moneyScale), nil
}

// Check product fields and bring money to canonical scale
// Options are not touched
func normalizeProduct(p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	switch n := utf8.RuneCountInString(p.Name); {
	case n == 0:
		return p, invalid("Product name is required")
	case n > MaxNameLength:
		return p, invalid("Product name must be at most %d characters", MaxNameLength)
	}

	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return p, invalid("Product description must be at most %d characters", MaxDescriptionLength)
	}

	var err error
	if p.Price, err = normalizeMoney("Price", p.Price); err != nil {
		return p, err
	}
	if !p.Price.IsPositive() {
		return p, invalid("Price must be positive")
	}

	if p.ShippingFee, err = normalizeMoney("Shipping fee", p.ShippingFee); err != nil {
		return p, err
	}

	return p, nil
}

func normalizeOption(o models.Option) (models.Option, error) {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return o, invalid("Option name is required")
	}

	var err error
	if o.AdditionalPrice, err = normalizeMoney("Additional price", o.AdditionalPrice); err != nil {
		return o, err
	}

	switch o.Kind {
	case models.OptionInput:
		if len(o.Choices) > 0 {
			return o, invalid("Input option can't have choices")
		}
		o.Choices = nil

	case models.OptionSelect:
		if len(o.Choices) == 0 {
			return o, invalid("Select option requires at least one choice")
		}

		choices := make([]string, 0, len(o.Choices))
		for _, c := range o.Choices {
			c = strings.TrimSpace(c)
			if c == "" {
				return o, invalid("Choice must not be blank")
			}
			if utf8.RuneCountInString(c) > MaxChoiceLength {
				return o, invalid("Choice must be at most %d characters", MaxChoiceLength)
			}
			choices = append(choices, c)
		}
		slices.Sort(choices)
		o.Choices = slices.Compact(choices)

	default:
		return o, invalid("Unknown option kind %q", o.Kind)
	}

	return o, nil
}

// Check options set of a product
// skipID is the option being replaced, zero when nothing is replaced
func checkOptionSet(existing []models.Option, candidate models.Option, skipID int64) error {
	count := 1
	for _, o := range existing {
		if o.ID == skipID {
			continue
		}
		if o.Name == candidate.Name {
			return invalid("Option name is duplicated")
		}
		count++
	}

	if count > MaxOptions {
		return invalid("Product can't have more than %d options", MaxOptions)
	}

	return nil
}
