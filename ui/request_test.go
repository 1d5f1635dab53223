package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dxsim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseRunForm(t *testing.T) {
	req, err := ParseRunForm(formRequest(fluForm()))
	require.NoError(t, err)

	assert.Equal(t, 500, req.Population.Size)
	assert.Equal(t, map[string]float64{"flu": 0.2, "asthma": 0.05}, req.Population.Conditions)
	assert.Equal(t, "flu", req.Condition)
	assert.Equal(t, 0.9, req.Sensitivity)
	assert.Equal(t, 0.8, req.Specificity)
	assert.Equal(t, uint64(17), req.Seed)
}

func TestParseRunForm_PairsByPosition(t *testing.T) {
	form := fluForm()
	form.Set("conditions", " flu , asthma , gout")
	form.Set("prevalences", "0.2,0.05")
	form.Set("test_condition", " flu ")
	form.Del("seed")

	req, err := ParseRunForm(formRequest(form))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"flu": 0.2, "asthma": 0.05}, req.Population.Conditions)
	assert.Equal(t, "flu", req.Condition)
	assert.Equal(t, uint64(0), req.Seed)
}

func TestParseRunForm_Rejects(t *testing.T) {
	tests := []struct {
		field, value, want string
	}{
		{"population_size", "lots", "population_size must be a whole number"},
		{"prevalences", "0.2, high", "prevalences must be a list of numbers"},
		{"specificity", "", "specificity must be a number"},
		{"seed", "-3", "seed must be a non-negative whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			form := fluForm()
			form.Set(tt.field, tt.value)

			_, err := ParseRunForm(formRequest(form))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Equal(t, tt.want, errors.UserMessage(err))
		})
	}
}
