package api

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
	"github.com/yourusername/ghostdeal/internal/usecase"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadSize   = 5 << 20
)

// Handler dashboard endpoints
type Handler struct {
	search   usecase.SearchUseCase
	deals    usecase.DealsUseCase
	alerts   usecase.AlertUseCase
	advice   usecase.AdviceUseCase
	sessions repository.SessionRepository
	sheet    repository.Spreadsheet

	dealsPages int
}

// NewHandler dealsPages is the page count used when the request has none
func NewHandler(
	search usecase.SearchUseCase,
	deals usecase.DealsUseCase,
	alerts usecase.AlertUseCase,
	advice usecase.AdviceUseCase,
	sessions repository.SessionRepository,
	sheet repository.Spreadsheet,
	dealsPages int,
) *Handler {
	if dealsPages < 1 {
		dealsPages = 1
	}
	return &Handler{
		search:     search,
		deals:      deals,
		alerts:     alerts,
		advice:     advice,
		sessions:   sessions,
		sheet:      sheet,
		dealsPages: dealsPages,
	}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

type adviceRequest struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
}

type alertRequest struct {
	Product         string  `json:"product" binding:"required"`
	TargetPrice     float64 `json:"target_price" binding:"required,gt=0"`
	IntervalMinutes int     `json:"interval_minutes" binding:"gte=0"`
	ChatID          int64   `json:"chat_id"`
}

type importResponse struct {
	Watches []entity.Watch `json:"watches"`
	Errors  []string       `json:"errors,omitempty"`
}

// Health liveness probe
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Search POST /api/search
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewValidationError("query is required"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.search.Search(ctx, req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.sessions.SaveResult(ctx, sessionID(c), result); err != nil {
		log.Printf("api: failed to save result: %v", err)
	}
	c.JSON(http.StatusOK, result)
}

// LastSearch GET /api/search/last
func (h *Handler) LastSearch(c *gin.Context) {
	result, ok, err := h.sessions.LastResult(c.Request.Context(), sessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok {
		handleError(c, NewNotFoundError("no search in this session"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportSearch GET /api/search/export
func (h *Handler) ExportSearch(c *gin.Context) {
	ctx := c.Request.Context()
	result, ok, err := h.sessions.LastResult(ctx, sessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok || result.Empty() {
		handleError(c, NewNotFoundError("no search results to export"))
		return
	}

	var buf bytes.Buffer
	if err := h.sheet.WriteOffers(ctx, &buf, result); err != nil {
		handleError(c, err)
		return
	}
	h.sendWorkbook(c, "ghostdeal-fiyatlar", buf.Bytes())
}

// ClearSession DELETE /api/session
func (h *Handler) ClearSession(c *gin.Context) {
	if err := h.sessions.Clear(c.Request.Context(), sessionID(c)); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deals GET /api/deals?country=&pages=
func (h *Handler) Deals(c *gin.Context) {
	pages := h.dealsPages
	if raw := c.Query("pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 10 {
			handleError(c, NewValidationError("pages must be between 1 and 10"))
			return
		}
		pages = n
	}

	ctx := c.Request.Context()
	deals, err := h.deals.Deals(ctx, c.Query("country"), pages)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.sessions.SaveDeals(ctx, sessionID(c), deals); err != nil {
		log.Printf("api: failed to save deals: %v", err)
	}
	c.JSON(http.StatusOK, deals)
}

// ExportDeals GET /api/deals/export, the session's deals or a fresh fetch
func (h *Handler) ExportDeals(c *gin.Context) {
	ctx := c.Request.Context()
	deals, ok, err := h.sessions.LastDeals(ctx, sessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok {
		deals, err = h.deals.Deals(ctx, c.Query("country"), h.dealsPages)
		if err != nil {
			handleError(c, err)
			return
		}
	}
	if len(deals) == 0 {
		handleError(c, NewNotFoundError("no deals to export"))
		return
	}

	var buf bytes.Buffer
	if err := h.sheet.WriteDeals(ctx, &buf, deals); err != nil {
		handleError(c, err)
		return
	}
	h.sendWorkbook(c, "ghostdeal-firsatlar", buf.Bytes())
}

// Advice POST /api/advice. Without a body the session's best offer is used.
func (h *Handler) Advice(c *gin.Context) {
	var req adviceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			handleError(c, NewValidationError("invalid payload"))
			return
		}
	}

	ctx := c.Request.Context()
	var (
		advice string
		err    error
	)
	if req.Product != "" {
		advice, err = h.advice.Advise(ctx, req.Product, req.Price)
	} else {
		result, ok, lerr := h.sessions.LastResult(ctx, sessionID(c))
		if lerr != nil {
			handleError(c, lerr)
			return
		}
		if !ok {
			handleError(c, NewNotFoundError("run a search first"))
			return
		}
		advice, err = h.advice.AdviseResult(ctx, result)
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

// CreateAlert POST /api/alerts
func (h *Handler) CreateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewValidationError("product and a positive target_price are required"))
		return
	}

	w, err := h.alerts.Start(c.Request.Context(), entity.WatchRequest{
		Product:     req.Product,
		TargetPrice: req.TargetPrice,
		Interval:    time.Duration(req.IntervalMinutes) * time.Minute,
		ChatID:      req.ChatID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ImportAlerts POST /api/alerts/import, multipart field "file"
func (h *Handler) ImportAlerts(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		handleError(c, NewValidationError("xlsx file is required in field \"file\""))
		return
	}
	if file.Size > maxUploadSize {
		handleError(c, NewValidationError("file is too large"))
		return
	}

	f, err := file.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	requests, err := h.sheet.ParseWatchlist(ctx, data, file.Filename)
	if err != nil {
		handleError(c, NewValidationError(err.Error()))
		return
	}

	resp := importResponse{Watches: []entity.Watch{}}
	for i, req := range requests {
		w, err := h.alerts.Start(ctx, req)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d (%s): %v", i+1, req.Product, err))
			continue
		}
		resp.Watches = append(resp.Watches, *w)
	}

	status := http.StatusCreated
	if len(resp.Watches) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

// ListAlerts GET /api/alerts
func (h *Handler) ListAlerts(c *gin.Context) {
	list, err := h.alerts.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAlert GET /api/alerts/:id
func (h *Handler) GetAlert(c *gin.Context) {
	w, err := h.alerts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// StopAlert DELETE /api/alerts/:id
func (h *Handler) StopAlert(c *gin.Context) {
	w, err := h.alerts.Stop(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
