package api

import (
	"bytes"
	"fmt"
	"net/http"

	"dxsim/adapters/excel"
	"dxsim/app"
	"dxsim/internal"
	"dxsim/internal/errors"
	"dxsim/internal/report"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SimulationHandler serves single runs and replicate sweeps as JSON
type SimulationHandler struct {
	simulations *app.SimulationService
	sweeps      *app.SweepService
	logger      *internal.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(simulations *app.SimulationService, sweeps *app.SweepService, logger *internal.Logger) *SimulationHandler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SimulationHandler{
		simulations: simulations,
		sweeps:      sweeps,
		logger:      logger.With("api"),
	}
}

// CreateSimulation runs one simulated test and returns the full result
func (h *SimulationHandler) CreateSimulation(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// SimulationReport runs one simulated test and returns it as markdown
func (h *SimulationHandler) SimulationReport(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(result.Report())))
}

// ExportSimulation runs one simulated test and returns an xlsx workbook
func (h *SimulationHandler) ExportSimulation(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteRun(&buf, result.Report()); err != nil {
		h.abort(c, errors.ExportFailed("xlsx", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.xlsx"`, result.Fingerprint.Short()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CreateSweep runs a replicate sweep and returns its summary
func (h *SimulationHandler) CreateSweep(c *gin.Context) {
	var req app.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, errors.WithCode(err, errors.CodeInvalidInput, "request body is not a valid sweep request"))
		return
	}

	result, err := h.sweeps.Sweep(c.Request.Context(), req)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SimulationHandler) run(c *gin.Context) (*app.RunResult, bool) {
	var req app.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, errors.WithCode(err, errors.CodeInvalidInput, "request body is not a valid simulation request"))
		return nil, false
	}

	result, err := h.simulations.Run(c.Request.Context(), req)
	if err != nil {
		h.abort(c, err)
		return nil, false
	}
	return result, true
}

func (h *SimulationHandler) abort(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": errors.UserMessage(err),
		"code":  errors.GetCode(err),
	})
}
