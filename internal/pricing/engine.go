package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// advanceRatio is the share of the total collected up front for advance payments.
var advanceRatio = decimal.NewFromFloat(0.5)

// ComputeSubtotal sums unit price times quantity across the cart.
func ComputeSubtotal(cart Cart) Money {
	subtotal := Zero
	for _, it := range cart {
		subtotal = subtotal.Add(it.LineTotal())
	}
	return subtotal
}

// ComputeSecurityDeposit sums line deposits for rentals. Sales never carry a deposit.
func ComputeSecurityDeposit(cart Cart, bookingType BookingType) Money {
	if bookingType != BookingRental {
		return Zero
	}
	deposit := Zero
	for _, it := range cart {
		deposit = deposit.Add(it.LineDeposit())
	}
	return deposit
}

// ComputeTotals applies surcharge, discounts and tax to the cart.
func ComputeTotals(cart Cart, cfg Config) (Totals, error) {
	if err := cart.Validate(); err != nil {
		return Totals{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Totals{}, err
	}

	subtotal := ComputeSubtotal(cart)
	adjusted := subtotal.
		Add(cfg.DistanceSurcharge).
		Sub(cfg.DiscountAmount).
		Sub(cfg.CouponDiscount).
		ClampZero()
	tax := adjusted.MulRate(cfg.TaxRate)
	total := adjusted.Add(tax)
	deposit := ComputeSecurityDeposit(cart, cfg.BookingType)

	return Totals{
		Subtotal:             subtotal,
		DistanceSurcharge:    cfg.DistanceSurcharge,
		DiscountAmount:       cfg.DiscountAmount,
		CouponDiscount:       cfg.CouponDiscount,
		AfterAdjustments:     adjusted,
		TaxAmount:            tax,
		TotalAmount:          total,
		TotalSecurityDeposit: deposit,
		TotalPayable:         total.Add(deposit),
	}, nil
}

// ComputePaymentBreakdown splits totals into pay-now and pay-later amounts.
func ComputePaymentBreakdown(totals Totals, cfg Config) (Breakdown, error) {
	if err := cfg.Validate(); err != nil {
		return Breakdown{}, err
	}
	rental := cfg.BookingType == BookingRental
	deposit := Zero
	if rental {
		deposit = totals.TotalSecurityDeposit
	}

	out := Breakdown{PaymentType: cfg.PaymentType, SecurityDeposit: deposit}
	switch cfg.PaymentType {
	case PaymentFull:
		out.PayNow = totals.TotalPayable
		out.PayLater = Zero
		out.Description = "Full payment"
		if rental {
			out.Description = "Full payment + Security deposit"
		}
	case PaymentAdvance:
		// The deposit stays outside this split and is reported in SecurityDeposit.
		advance := totals.TotalAmount.MulRate(advanceRatio)
		out.PayNow = advance
		out.PayLater = totals.TotalAmount.Sub(advance)
		out.Description = "50% advance payment"
	case PaymentAdvanceWithDeposit:
		advance := totals.TotalAmount.MulRate(advanceRatio)
		out.PayNow = advance.Add(deposit)
		out.PayLater = totals.TotalAmount.Sub(advance)
		out.Description = "50% advance + Security deposit"
	case PaymentPartial:
		pay := cfg.PaymentAmount.ClampZero().Min(totals.TotalPayable)
		out.PayNow = pay
		out.PayLater = totals.TotalPayable.Sub(pay)
		out.Description = "Partial payment (Custom amount)"
	default:
		return Breakdown{}, fmt.Errorf("%w: unknown payment type %q", ErrInvalidConfiguration, cfg.PaymentType)
	}
	return out, nil
}

// Compute runs totals and payment breakdown in one call.
func Compute(cart Cart, cfg Config) (Result, error) {
	totals, err := ComputeTotals(cart, cfg)
	if err != nil {
		return Result{}, err
	}
	breakdown, err := ComputePaymentBreakdown(totals, cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{BookingType: cfg.BookingType, Totals: totals, Breakdown: breakdown}, nil
}
