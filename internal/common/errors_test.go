package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorAppError(t *testing.T) {
	base := errors.New("partial payment requires a payment amount")
	err := fmt.Errorf("quote: %w", NewAppError("INVALID_CONFIGURATION", "", http.StatusUnprocessableEntity, base).WithDetails(map[string]string{"field": "paymentAmount"}))

	rr := httptest.NewRecorder()
	WriteError(rr, err)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "INVALID_CONFIGURATION", body.Error.Code)
	require.Equal(t, base.Error(), body.Error.Message)
	require.NotNil(t, body.Error.Details)
	require.True(t, errors.Is(err, base))
	require.True(t, IsAppError(err))
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "redis")
}
