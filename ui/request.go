package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"dxsim/app"
	"dxsim/domain/diagnostic"
	"dxsim/internal/errors"
)

// ParseRunForm reads the simulation form. Condition names and prevalences
// are comma separated and paired by position; surplus entries on either
// side are dropped.
func ParseRunForm(r *http.Request) (app.RunRequest, error) {
	var req app.RunRequest
	if err := r.ParseForm(); err != nil {
		return req, errors.WithCode(err, errors.CodeInvalidInput, "could not read the form")
	}

	size, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("population_size")))
	if err != nil {
		return req, fieldError("population_size", "a whole number", err)
	}

	names := strings.Split(r.PostFormValue("conditions"), ",")
	rawPrevalences := strings.Split(r.PostFormValue("prevalences"), ",")
	n := min(len(names), len(rawPrevalences))

	conditions := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		p, err := strconv.ParseFloat(strings.TrimSpace(rawPrevalences[i]), 64)
		if err != nil {
			return req, fieldError("prevalences", "a list of numbers", err)
		}
		conditions[strings.TrimSpace(names[i])] = p
	}

	sensitivity, err := parseFloatField(r, "sensitivity")
	if err != nil {
		return req, err
	}
	specificity, err := parseFloatField(r, "specificity")
	if err != nil {
		return req, err
	}

	var seed uint64
	if raw := strings.TrimSpace(r.PostFormValue("seed")); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return req, fieldError("seed", "a non-negative whole number", err)
		}
	}

	return app.RunRequest{
		Population: diagnostic.PopulationConfig{
			Size:       size,
			Conditions: conditions,
		},
		Condition:   strings.TrimSpace(r.PostFormValue("test_condition")),
		Sensitivity: sensitivity,
		Specificity: specificity,
		Seed:        seed,
	}, nil
}

func parseFloatField(r *http.Request, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue(field)), 64)
	if err != nil {
		return 0, fieldError(field, "a number", err)
	}
	return v, nil
}

func fieldError(field, want string, cause error) error {
	return errors.WithCode(cause, errors.CodeInvalidInput, fmt.Sprintf("%s must be %s", field, want))
}
