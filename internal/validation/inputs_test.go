package validation

import (
	"math"
	"testing"

	"dxsim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Condition   string             `json:"test_condition" validate:"required"`
	Sensitivity float64            `json:"sensitivity" validate:"probability"`
	Replicates  int                `yaml:"replicates" validate:"omitempty,min=1,max=10000"`
	Conditions  map[string]float64 `json:"conditions" validate:"required,dive,keys,required,endkeys"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{
		Condition:   "flu",
		Sensitivity: 1,
		Conditions:  map[string]float64{"flu": 0.1},
	}))
}

func TestStruct_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"missing condition", sample{Sensitivity: 0.5, Conditions: map[string]float64{"a": 1}}, "test_condition is required"},
		{"sensitivity above one", sample{Condition: "a", Sensitivity: 1.5, Conditions: map[string]float64{"a": 1}}, "sensitivity must be between 0 and 1"},
		{"sensitivity nan", sample{Condition: "a", Sensitivity: math.NaN(), Conditions: map[string]float64{"a": 1}}, "sensitivity must be between 0 and 1"},
		{"replicates too many", sample{Condition: "a", Replicates: 20000, Conditions: map[string]float64{"a": 1}}, "replicates must be at most 10000"},
		{"empty condition name", sample{Condition: "a", Conditions: map[string]float64{"": 0.2}}, "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
