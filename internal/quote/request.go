package quote

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/booking-pricing/internal/coupon"
	"github.com/noah-isme/booking-pricing/internal/distance"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Request is the body of POST /quotes.
type Request struct {
	BookingType pricing.BookingType `json:"bookingType" validate:"required"`
	// PaymentType defaults to the booking type's default when empty.
	PaymentType pricing.PaymentType `json:"paymentType,omitempty"`
	Items       []pricing.LineItem  `json:"items" validate:"max=500"`
	// TaxRate is a fraction; nil means the configured rate.
	TaxRate           *decimal.Decimal `json:"taxRate,omitempty"`
	PaymentAmount     *pricing.Money   `json:"paymentAmount,omitempty"`
	Discount          *Discount        `json:"discount,omitempty"`
	CouponCode        string           `json:"couponCode,omitempty" validate:"omitempty,max=64"`
	CustomerID        string           `json:"customerId,omitempty" validate:"omitempty,max=64"`
	Distance          *Distance        `json:"distance,omitempty"`
	DistanceSurcharge *pricing.Money   `json:"distanceSurcharge,omitempty"`
}

// Discount is a manual discount entered by staff.
type Discount struct {
	Type  pricing.DiscountKind `json:"type"`
	Value decimal.Decimal      `json:"value"`
}

// Distance asks for the surcharge to be looked up from the tier table.
type Distance struct {
	VariantID string  `json:"variantId,omitempty" validate:"omitempty,max=64"`
	Km        float64 `json:"km"`
}

// normalize canonicalises enum casing, the payment type default and the tax rate so
// that equivalent requests share a cache key.
func (r Request) normalize(defaultTax decimal.Decimal) Request {
	if bt, err := pricing.ParseBookingType(string(r.BookingType)); err == nil {
		r.BookingType = bt
	}
	if strings.TrimSpace(string(r.PaymentType)) == "" {
		r.PaymentType = pricing.DefaultPaymentType(r.BookingType)
	} else if pt, err := pricing.ParsePaymentType(string(r.PaymentType)); err == nil {
		r.PaymentType = pt
	}
	if r.TaxRate == nil {
		rate := defaultTax
		r.TaxRate = &rate
	}
	r.CouponCode = coupon.NormalizeCode(r.CouponCode)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.Discount != nil {
		d := *r.Discount
		d.Type = pricing.DiscountKind(strings.ToLower(strings.TrimSpace(string(d.Type))))
		r.Discount = &d
	}
	return r
}

// DistanceInfo reports how the distance surcharge was obtained.
type DistanceInfo struct {
	Source    distance.Source `json:"source"`
	Surcharge pricing.Money   `json:"surcharge"`
}

// SourceExplicit marks a surcharge supplied directly by the caller.
const SourceExplicit distance.Source = "explicit"

// Response is the body returned for a quote.
type Response struct {
	Quote    pricing.Result  `json:"quote"`
	Coupon   *coupon.Applied `json:"coupon,omitempty"`
	Distance *DistanceInfo   `json:"distance,omitempty"`
	Cached   bool            `json:"cached"`
}
