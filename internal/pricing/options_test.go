package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailablePaymentTypes(t *testing.T) {
	sale := AvailablePaymentTypes(BookingDirectSale)
	require.Len(t, sale, 3)
	for _, opt := range sale {
		require.NotEqual(t, PaymentAdvanceWithDeposit, opt.Type)
	}

	rental := AvailablePaymentTypes(BookingRental)
	require.Len(t, rental, 4)
	require.Equal(t, PaymentAdvanceWithDeposit, rental[2].Type)

	// callers must not be able to mutate the table
	rental[0].Label = "changed"
	require.Equal(t, "Full Payment + Security Deposit", AvailablePaymentTypes(BookingRental)[0].Label)

	require.Nil(t, AvailablePaymentTypes("lease"))
}

func TestOfferedTypesAreAccepted(t *testing.T) {
	paid := MoneyFromInt(1)
	for _, bt := range []BookingType{BookingRental, BookingDirectSale} {
		for _, opt := range AvailablePaymentTypes(bt) {
			cfg := Config{BookingType: bt, PaymentType: opt.Type, PaymentAmount: &paid}
			require.NoError(t, cfg.Validate(), "%s/%s", bt, opt.Type)
		}
	}
	require.Equal(t, PaymentFull, DefaultPaymentType(BookingDirectSale))
	require.Equal(t, PaymentAdvance, DefaultPaymentType(BookingRental))
}

func TestParseTypes(t *testing.T) {
	bt, err := ParseBookingType(" Rental ")
	require.NoError(t, err)
	require.Equal(t, BookingRental, bt)
	_, err = ParseBookingType("lease")
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	pt, err := ParsePaymentType("ADVANCE_WITH_DEPOSIT")
	require.NoError(t, err)
	require.Equal(t, PaymentAdvanceWithDeposit, pt)
	_, err = ParsePaymentType("emi")
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}
