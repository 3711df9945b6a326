package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OptionKind string

const (
	// Free text entered by the buyer, no choices
	OptionInput OptionKind = "INPUT"
	// One of the predefined choices
	OptionSelect OptionKind = "SELECT"
)

type Option struct {
	ID              int64
	ProductID       int64
	Name            string
	Kind            OptionKind
	AdditionalPrice decimal.Decimal
	Choices         []string // SELECT only, sorted
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ShippingFee decimal.Decimal
	MemberID    int64
	Options     []Option

	CreatedBy *int64
	UpdatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
