package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createDraft)
		entries.GET("", h.listEntries)
		entries.GET("/by-id/:entryID", h.getEntryByID)
		entries.GET("/:entryNumber", h.getEntry)
		entries.PUT("/:entryNumber", h.updateDraft)
		entries.DELETE("/:entryNumber", h.discardDraft)
		entries.POST("/:entryNumber/post", h.postEntry)
		entries.POST("/:entryNumber/reverse", h.reverseEntry)
	}
}

// createDraft godoc
// @Summary Create a draft journal entry
// @Description Validates balance and line rules and stores the entry as DRAFT. Balances are not touched.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 422 {object} map[string]string "Unbalanced or empty entry"
// @Router /journal-entries [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Tags journal-entries
// @Produce  json
// @Param   status query string false "DRAFT, POSTED or REVERSED"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListJournalEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), tenantID, params)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	entryNumber := c.Param("entryNumber")

	entry, err := h.journalService.GetEntry(c.Request.Context(), tenantID, entryNumber)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("entry_number", entryNumber)), err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) getEntryByID(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	entryID := c.Param("entryID")

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateDraft godoc
// @Summary Replace a draft journal entry
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryNumber path string true "Entry number"
// @Param   entry body dto.UpdateJournalEntryRequest true "Journal entry"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Router /journal-entries/{entryNumber} [put]
func (h *journalHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	entryNumber := c.Param("entryNumber")

	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), tenantID, entryNumber, req, userID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("entry_number", entryNumber)), err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) discardDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	entryNumber := c.Param("entryNumber")

	if err := h.journalService.DiscardDraft(c.Request.Context(), tenantID, entryNumber, userID); err != nil {
		handleServiceError(c, logger.With(slog.String("entry_number", entryNumber)), err, "Failed to discard journal entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Applies every line to account balances atomically and marks the entry POSTED
// @Tags journal-entries
// @Produce  json
// @Param   entryNumber path string true "Entry number"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 422 {object} map[string]string "Inactive or unknown account"
// @Failure 503 {object} map[string]string "Storage unavailable, retry"
// @Router /journal-entries/{entryNumber}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	entryNumber := c.Param("entryNumber")

	entry, err := h.journalService.PostEntry(c.Request.Context(), tenantID, entryNumber, userID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("entry_number", entryNumber)), err, "Failed to post journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Posts a compensating entry with debit and credit swapped and marks the original REVERSED
// @Tags journal-entries
// @Produce  json
// @Param   entryNumber path string true "Entry number"
// @Success 201 {object} dto.ReverseJournalEntryResponse
// @Failure 409 {object} map[string]string "Not posted or already reversed"
// @Router /journal-entries/{entryNumber}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	entryNumber := c.Param("entryNumber")

	original, reversal, err := h.journalService.ReverseEntry(c.Request.Context(), tenantID, entryNumber, userID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("entry_number", entryNumber)), err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ReverseJournalEntryResponse{
		Original: dto.ToJournalEntryResponse(original),
		Reversal: dto.ToJournalEntryResponse(reversal),
	})
}
