package ui

import (
	"html/template"
	"net/http"

	"dxsim/app"
	"dxsim/internal/errors"
	"dxsim/internal/report"
)

type indexPage struct {
	Form formDefaults
}

type formDefaults struct {
	PopulationSize string
	Conditions     string
	Prevalences    string
	TestCondition  string
	Sensitivity    string
	Specificity    string
	Seed           string
}

type resultPage struct {
	Result *app.RunResult
	Report template.HTML
}

type errorPage struct {
	Status  int
	Code    string
	Message string
}

var defaultForm = formDefaults{
	PopulationSize: "1000",
	Conditions:     "flu, asthma",
	Prevalences:    "0.1, 0.05",
	TestCondition:  "flu",
	Sensitivity:    "0.9",
	Specificity:    "0.8",
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", indexPage{Form: defaultForm})
}

func (a *App) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRunForm(r)
	if err != nil {
		a.renderError(w, err)
		return
	}

	result, err := a.simulations.Run(r.Context(), req)
	if err != nil {
		a.renderError(w, err)
		return
	}

	a.renderTemplate(w, http.StatusOK, "result.html", resultPage{
		Result: result,
		// raw HTML is stripped by report.HTML
		Report: template.HTML(report.HTML(report.Markdown(result.Report()))),
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *App) renderError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("simulation failed: %v", err)
	}
	a.renderTemplate(w, status, "error.html", errorPage{
		Status:  status,
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}
