package quote

import (
	"net/http"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Handler exposes quoting endpoints.
type Handler struct {
	Svc *Service
}

// Create handles POST /quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.WriteError(w, err)
		return
	}
	resp, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, resp)
}

type paymentTypesResponse struct {
	BookingType pricing.BookingType     `json:"bookingType"`
	Default     pricing.PaymentType     `json:"default"`
	Options     []pricing.PaymentOption `json:"options"`
}

// PaymentTypes handles GET /payment-types?bookingType=.
func (h *Handler) PaymentTypes(w http.ResponseWriter, r *http.Request) {
	bt, err := pricing.ParseBookingType(r.URL.Query().Get("bookingType"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "bookingType must be rental or direct_sale", nil)
		return
	}
	common.Data(w, http.StatusOK, paymentTypesResponse{
		BookingType: bt,
		Default:     pricing.DefaultPaymentType(bt),
		Options:     pricing.AvailablePaymentTypes(bt),
	})
}
