package coupon

import (
	"errors"
	"net/http"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Handler exposes coupon validation over HTTP.
type Handler struct {
	Svc *Service
}

type validateRequest struct {
	Code       string        `json:"code" validate:"required,max=64"`
	OrderValue pricing.Money `json:"orderValue"`
	CustomerID string        `json:"customerId" validate:"omitempty,max=64"`
}

type validateResponse struct {
	Valid    bool           `json:"valid"`
	Coupon   *Applied       `json:"coupon,omitempty"`
	Discount *pricing.Money `json:"discount,omitempty"`
	Error    string         `json:"error,omitempty"`
	Message  string         `json:"message"`
}

// Validate checks a coupon code against an order value. Ineligible coupons are a
// normal outcome and are reported with valid=false and HTTP 200.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	var req validateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.OrderValue.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "orderValue must not be negative", nil)
		return
	}

	applied, err := h.Svc.Apply(r.Context(), req.Code, req.OrderValue, req.CustomerID)
	if err != nil {
		if !IsRejection(err) {
			common.WriteError(w, err)
			return
		}
		common.Data(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error(), Message: RejectionMessage(err)})
		return
	}
	discount := applied.Discount
	common.Data(w, http.StatusOK, validateResponse{
		Valid:    true,
		Coupon:   &applied,
		Discount: &discount,
		Message:  "Coupon applied! You saved " + discount.String(),
	})
}

// RejectionMessage returns customer-facing wording for a coupon rejection.
func RejectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "This coupon code does not exist or is no longer active"
	case errors.Is(err, ErrNotYetActive):
		return "This coupon is not active yet"
	case errors.Is(err, ErrExpired):
		return "This coupon has expired"
	case errors.Is(err, ErrMinimumOrderUnmet):
		return "The order does not meet the minimum value for this coupon"
	case errors.Is(err, ErrUsageLimitReached):
		return "This coupon has reached its maximum usage limit"
	case errors.Is(err, ErrPerUserLimitReached):
		return "You have already used this coupon the maximum number of times"
	default:
		return "Coupon could not be applied"
	}
}
