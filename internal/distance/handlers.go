package distance

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Handler exposes distance surcharge lookups over HTTP.
type Handler struct {
	Table *Table
}

type computeResponse struct {
	VariantID string        `json:"variantId,omitempty"`
	Km        float64       `json:"km"`
	Base      pricing.Money `json:"base"`
	Addon     pricing.Money `json:"addon"`
	Source    Source        `json:"source"`
}

// Compute handles GET /distance-pricing/compute?variantId=&km=&base=.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	variantID := q.Get("variantId")
	if variantID == "" {
		variantID = q.Get("variant_id")
	}

	km := 0.0
	if raw := strings.TrimSpace(q.Get("km")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "km must be a number", nil)
			return
		}
		km = v
	}
	base := pricing.Zero
	if raw := strings.TrimSpace(q.Get("base")); raw != "" {
		v, err := pricing.ParseMoney(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "base must be a decimal amount", nil)
			return
		}
		base = v
	}

	res, err := h.Table.Compute(variantID, km, base)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			common.JSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, computeResponse{
		VariantID: variantID,
		Km:        km,
		Base:      base,
		Addon:     res.Addon,
		Source:    res.Source,
	})
}
