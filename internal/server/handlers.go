package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/ai"
	"github.com/DucLoc1999/Dexonic-Trading/internal/flags"
	"github.com/DucLoc1999/Dexonic-Trading/internal/models"
	"github.com/DucLoc1999/Dexonic-Trading/internal/payload"
	"github.com/DucLoc1999/Dexonic-Trading/internal/quote"
	"github.com/DucLoc1999/Dexonic-Trading/internal/storage"
)

// TxnConfirmer blocks until a submitted transaction lands on chain or the
// context expires. Satisfied by *aptos.Client.
type TxnConfirmer interface {
	WaitForTransaction(ctx context.Context, hash string) error
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Quotes       *quote.Orchestrator // Quote aggregation pipeline
	Payloads     *payload.Builder    // Swap instruction encoder
	Cache        storage.TradeCache  // Redis-backed trade cache (optional)
	Store        storage.TradeStore  // ClickHouse trade store (optional)
	Confirmer    TxnConfirmer        // On-chain confirmation for reported trades (optional)
	Flags        *flags.Store        // Redis-backed venue kill-switches (optional)
	AI           *ai.Agent           // AI agent for natural language questions
	AIBaseConfig ai.AgentConfig      // Base configuration for AI agents
	AIQuoter     ai.Quoter           // Quote pipeline handed to per-request agents
	DevMode      bool                // Enable detailed error responses in development
	Logger       *logrus.Logger      // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// TradeReport records an executed trade reported back by a wallet.
// The trade lands in both the recent-trades cache and the analytics store;
// either being unavailable is not an error for the other.
func (h *Handlers) TradeReport(c echo.Context) error {
	if h.Cache == nil && h.Store == nil {
		return h.err(c, http.StatusBadRequest, "trade recording is not configured", nil)
	}

	var trade models.TradeRecord
	if err := c.Bind(&trade); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(trade.Hash) == "" {
		return h.err(c, http.StatusBadRequest, "invalid trade", map[string]any{"hash": "required"})
	}
	if trade.AmountIn == 0 || trade.AmountOut == 0 {
		return h.err(c, http.StatusBadRequest, "invalid trade", map[string]any{"amounts": "must be positive"})
	}
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now().UTC()
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Reported trades are only trusted once the hash resolves on chain.
	if h.Confirmer != nil {
		if err := h.Confirmer.WaitForTransaction(ctx, trade.Hash); err != nil {
			return h.err(c, http.StatusBadRequest, "transaction not confirmed", map[string]any{"hash": trade.Hash})
		}
	}

	if h.Store != nil {
		if err := h.Store.InsertTrade(ctx, &trade); err != nil {
			h.Logger.WithError(err).Error("failed to persist trade")
			return h.err(c, http.StatusInternalServerError, "failed to record trade", nil)
		}
	}
	if h.Cache != nil {
		if err := h.Cache.AddRecentTrade(ctx, &trade); err != nil {
			h.Logger.WithError(err).Warn("failed to cache trade")
		}
	}

	return c.JSON(http.StatusCreated, trade)
}

// RecentTrades returns the most recent executed trades with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentTrades(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusBadRequest, "trade cache is not configured", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentTrades(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get trades", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsUpsert creates or updates a venue flag with the given key and value
// Validates key format and returns the created/updated flag
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusBadRequest, "flags are not configured", nil)
	}

	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing venue flag with the given key
// Validates key format and returns the updated flag
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusBadRequest, "flags are not configured", nil)
	}

	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a venue flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusBadRequest, "flags are not configured", nil)
	}

	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all venue flags in the system
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusBadRequest, "flags are not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a venue flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusBadRequest, "flags are not configured", nil)
	}

	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// AIAsk processes natural language swap questions using AI
// Supports optional model override for one-off requests
// Returns the extracted swap intent and answer with execution time
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "ai is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	// Use default AI agent or create temporary one with custom model
	agent := h.AI
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		tmp, err := ai.NewAgent(cfg, h.AIQuoter)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create ai agent", nil)
		}
		agent = tmp
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{
		InputToken:  res.InputToken,
		OutputToken: res.OutputToken,
		AmountIn:    strconv.FormatUint(res.AmountIn, 10),
		Answer:      res.Answer,
		TookMs:      time.Since(start).Milliseconds(),
	})
}
