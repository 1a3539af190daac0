package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type FuelEntryHandler struct {
	fuelEntryService *service.FuelEntryService
}

func NewFuelEntryHandler(fuelEntryService *service.FuelEntryService) *FuelEntryHandler {
	return &FuelEntryHandler{fuelEntryService: fuelEntryService}
}

// CreateEntry handles POST /fuel-entries
func (h *FuelEntryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateFuelEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid fuel entry", err)
		return
	}

	entry, err := h.fuelEntryService.Create(c.Request.Context(), req)
	if errors.Is(err, dto.ErrInvalidEntry) {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid fuel entry", err)
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to create fuel entry", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles GET /fuel-entries?vehicle_id=
func (h *FuelEntryHandler) ListEntries(c *gin.Context) {
	entries, err := h.fuelEntryService.List(c.Request.Context(), c.Query("vehicle_id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to list fuel entries", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetEntry handles GET /fuel-entries/:id
func (h *FuelEntryHandler) GetEntry(c *gin.Context) {
	entry, err := h.fuelEntryService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, dto.ErrNotFound) {
		sendError(c, http.StatusNotFound, dto.CodeNotFound, "fuel entry not found", err)
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to load fuel entry", err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// UpdateEntry handles PUT /fuel-entries/:id
func (h *FuelEntryHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateFuelEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid fuel entry", err)
		return
	}

	entry, err := h.fuelEntryService.Update(c.Request.Context(), c.Param("id"), req)
	switch {
	case errors.Is(err, dto.ErrInvalidEntry):
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid fuel entry", err)
		return
	case errors.Is(err, dto.ErrNotFound):
		sendError(c, http.StatusNotFound, dto.CodeNotFound, "fuel entry not found", err)
		return
	case err != nil:
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to update fuel entry", err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /fuel-entries/:id
func (h *FuelEntryHandler) DeleteEntry(c *gin.Context) {
	err := h.fuelEntryService.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, dto.ErrNotFound) {
		sendError(c, http.StatusNotFound, dto.CodeNotFound, "fuel entry not found", err)
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to delete fuel entry", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportEntries handles GET /fuel-entries/export?vehicle_id=
func (h *FuelEntryHandler) ExportEntries(c *gin.Context) {
	vehicleID := c.Query("vehicle_id")
	data, err := h.fuelEntryService.ExportXLSX(c.Request.Context(), vehicleID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to export fuel entries", err)
		return
	}

	name := "fuel-entries.xlsx"
	if vehicleID != "" {
		name = fmt.Sprintf("fuel-entries-%s.xlsx", safeFilename(vehicleID))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// VehicleStats handles GET /vehicles/:id/stats?tank_capacity=
func (h *FuelEntryHandler) VehicleStats(c *gin.Context) {
	var tankCapacity float64
	if raw := c.Query("tank_capacity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "tank_capacity must be a non-negative number", nil)
			return
		}
		tankCapacity = v
	}

	stats, err := h.fuelEntryService.Stats(c.Request.Context(), c.Param("id"), tankCapacity)
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to compute vehicle stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
