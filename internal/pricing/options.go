package pricing

// PaymentOption is one entry of the payment type picker shown for a booking type.
type PaymentOption struct {
	Type  PaymentType `json:"value"`
	Label string      `json:"label"`
}

var paymentOptions = map[BookingType][]PaymentOption{
	BookingDirectSale: {
		{Type: PaymentFull, Label: "Full Payment"},
		{Type: PaymentAdvance, Label: "Advance Payment (50%)"},
		{Type: PaymentPartial, Label: "Partial Payment (Custom Amount)"},
	},
	BookingRental: {
		{Type: PaymentFull, Label: "Full Payment + Security Deposit"},
		{Type: PaymentAdvance, Label: "Advance Payment (50%)"},
		{Type: PaymentAdvanceWithDeposit, Label: "Advance + Security Deposit"},
		{Type: PaymentPartial, Label: "Partial Payment (Custom Amount)"},
	},
}

// AvailablePaymentTypes returns the payment types offered for a booking type.
// Unknown booking types get nil.
func AvailablePaymentTypes(bookingType BookingType) []PaymentOption {
	opts := paymentOptions[bookingType]
	if opts == nil {
		return nil
	}
	out := make([]PaymentOption, len(opts))
	copy(out, opts)
	return out
}

// DefaultPaymentType is the type a fresh booking form starts with.
func DefaultPaymentType(bookingType BookingType) PaymentType {
	if bookingType == BookingDirectSale {
		return PaymentFull
	}
	return PaymentAdvance
}
