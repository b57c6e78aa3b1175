package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BookingType distinguishes rentals (items come back, deposit charged) from direct sales.
type BookingType string

const (
	BookingRental     BookingType = "rental"
	BookingDirectSale BookingType = "direct_sale"
)

// ParseBookingType normalises user input into a BookingType.
func ParseBookingType(s string) (BookingType, error) {
	switch bt := BookingType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BookingRental, BookingDirectSale:
		return bt, nil
	default:
		return "", fmt.Errorf("%w: unknown booking type %q", ErrInvalidConfiguration, s)
	}
}

// Valid reports whether bt is a known booking type.
func (bt BookingType) Valid() bool {
	return bt == BookingRental || bt == BookingDirectSale
}

// PaymentType controls how much of the total is collected at booking time.
type PaymentType string

const (
	PaymentFull               PaymentType = "full"
	PaymentAdvance            PaymentType = "advance"
	PaymentAdvanceWithDeposit PaymentType = "advance_with_deposit"
	PaymentPartial            PaymentType = "partial"
)

// ParsePaymentType normalises user input into a PaymentType.
func ParsePaymentType(s string) (PaymentType, error) {
	switch pt := PaymentType(strings.ToLower(strings.TrimSpace(s))); pt {
	case PaymentFull, PaymentAdvance, PaymentAdvanceWithDeposit, PaymentPartial:
		return pt, nil
	default:
		return "", fmt.Errorf("%w: unknown payment type %q", ErrInvalidConfiguration, s)
	}
}

// LineItem is one product or package line in a cart.
type LineItem struct {
	ID                     string `json:"id,omitempty"`
	Name                   string `json:"name,omitempty"`
	UnitPrice              Money  `json:"unitPrice"`
	Quantity               int    `json:"quantity"`
	SecurityDepositPerUnit Money  `json:"securityDeposit"`
}

// NewLineItem validates and builds a line item.
func NewLineItem(id string, unitPrice Money, quantity int, depositPerUnit Money) (LineItem, error) {
	it := LineItem{ID: id, UnitPrice: unitPrice, Quantity: quantity, SecurityDepositPerUnit: depositPerUnit}
	if err := it.Validate(); err != nil {
		return LineItem{}, err
	}
	return it, nil
}

// Validate rejects negative amounts and non-positive quantities.
func (it LineItem) Validate() error {
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %q has negative unit price %s", ErrInvalidArgument, it.ID, it.UnitPrice)
	}
	if it.Quantity < 1 {
		return fmt.Errorf("%w: item %q has quantity %d", ErrInvalidArgument, it.ID, it.Quantity)
	}
	if it.SecurityDepositPerUnit.IsNegative() {
		return fmt.Errorf("%w: item %q has negative security deposit %s", ErrInvalidArgument, it.ID, it.SecurityDepositPerUnit)
	}
	return nil
}

// LineTotal is unit price times quantity.
func (it LineItem) LineTotal() Money { return it.UnitPrice.MulInt(it.Quantity) }

// LineDeposit is the per-unit deposit times quantity.
func (it LineItem) LineDeposit() Money { return it.SecurityDepositPerUnit.MulInt(it.Quantity) }

// Cart is an ordered list of line items.
type Cart []LineItem

// Validate checks every line item.
func (c Cart) Validate() error {
	for _, it := range c {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Config carries every calculation input beyond the cart. Build one per calculation.
type Config struct {
	BookingType BookingType
	PaymentType PaymentType
	// TaxRate is a fraction, 0.18 for 18%.
	TaxRate decimal.Decimal
	// PaymentAmount is required for PaymentPartial and ignored otherwise.
	PaymentAmount     *Money
	DiscountAmount    Money
	CouponDiscount    Money
	DistanceSurcharge Money
}

// Validate reports malformed configs before any arithmetic runs.
func (c Config) Validate() error {
	if !c.BookingType.Valid() {
		return fmt.Errorf("%w: unknown booking type %q", ErrInvalidConfiguration, c.BookingType)
	}
	switch c.PaymentType {
	case PaymentFull, PaymentAdvance:
	case PaymentAdvanceWithDeposit:
		if c.BookingType != BookingRental {
			return fmt.Errorf("%w: %s is only available for rental bookings", ErrInvalidConfiguration, c.PaymentType)
		}
	case PaymentPartial:
		if c.PaymentAmount == nil {
			return fmt.Errorf("%w: partial payment requires a payment amount", ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidConfiguration, c.PaymentType)
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("%w: negative tax rate %s", ErrInvalidArgument, c.TaxRate)
	}
	if c.DiscountAmount.IsNegative() {
		return fmt.Errorf("%w: negative discount %s", ErrInvalidArgument, c.DiscountAmount)
	}
	if c.CouponDiscount.IsNegative() {
		return fmt.Errorf("%w: negative coupon discount %s", ErrInvalidArgument, c.CouponDiscount)
	}
	if c.DistanceSurcharge.IsNegative() {
		return fmt.Errorf("%w: negative distance surcharge %s", ErrInvalidArgument, c.DistanceSurcharge)
	}
	return nil
}

// Totals holds the pre-payment figures of a calculation.
type Totals struct {
	Subtotal             Money `json:"subtotal"`
	DistanceSurcharge    Money `json:"distanceSurcharge"`
	DiscountAmount       Money `json:"discountAmount"`
	CouponDiscount       Money `json:"couponDiscount"`
	AfterAdjustments     Money `json:"afterAdjustments"`
	TaxAmount            Money `json:"taxAmount"`
	TotalAmount          Money `json:"totalAmount"`
	TotalSecurityDeposit Money `json:"totalSecurityDeposit"`
	TotalPayable         Money `json:"totalPayable"`
}

// Breakdown splits the bill into what is collected now and later.
type Breakdown struct {
	PaymentType PaymentType `json:"paymentType"`
	PayNow      Money       `json:"payNow"`
	PayLater    Money       `json:"payLater"`
	// SecurityDeposit is the deposit tracked alongside the split; zero for direct sales.
	SecurityDeposit Money  `json:"securityDeposit"`
	Description     string `json:"description"`
}

// Result is the complete output of Compute. It is never mutated once produced.
type Result struct {
	BookingType BookingType `json:"bookingType"`
	Totals
	Breakdown
}
