package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DucLoc1999/Dexonic-Trading/internal/payload"
	"github.com/DucLoc1999/Dexonic-Trading/internal/quote"
)

// Quote aggregates swap quotes across all matching venues.
// Venue failures never surface here; an empty quote list with 200 OK is
// the worst case for a valid request.
func (h *Handlers) Quote(c echo.Context) error {
	var body QuoteRequest
	if err := c.Bind(&body); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	req, err := quote.ParseRequest(
		strings.TrimSpace(body.InputToken),
		strings.TrimSpace(body.OutputToken),
		strings.TrimSpace(body.InputAmount),
	)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid quote request", map[string]any{"err": err.Error()})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.Quotes.Aggregate(ctx, req)
	if err != nil {
		if errors.Is(err, quote.ErrInvalidRequest) {
			return h.err(c, http.StatusBadRequest, "invalid quote request", map[string]any{"err": err.Error()})
		}
		return h.err(c, http.StatusInternalServerError, "quote aggregation failed", nil)
	}

	return c.JSON(http.StatusOK, res)
}

// QuotePayload builds the wallet-facing swap instruction for a quote the
// caller has already obtained
func (h *Handlers) QuotePayload(c echo.Context) error {
	var body PayloadRequest
	if err := c.Bind(&body); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	amountIn, err := strconv.ParseUint(strings.TrimSpace(body.AmountIn), 10, 64)
	if err != nil || amountIn == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amountIn", map[string]any{"amountIn": "must be a positive integer"})
	}
	quotedOut, err := strconv.ParseUint(strings.TrimSpace(body.OutputAmount), 10, 64)
	if err != nil || quotedOut == 0 {
		return h.err(c, http.StatusBadRequest, "invalid outputAmount", map[string]any{"outputAmount": "must be a positive integer"})
	}
	if strings.TrimSpace(body.Venue) == "" {
		return h.err(c, http.StatusBadRequest, "invalid venue", map[string]any{"venue": "required"})
	}

	inst, err := h.Payloads.Build(payload.Params{
		Mode:        strings.TrimSpace(body.Mode),
		Venue:       strings.TrimSpace(body.Venue),
		InputToken:  strings.TrimSpace(body.InputToken),
		OutputToken: strings.TrimSpace(body.OutputToken),
		AmountIn:    amountIn,
		QuotedOut:   quotedOut,
		SlippageBps: body.SlippageBps,
		Receiver:    strings.TrimSpace(body.Receiver),
	})
	if err != nil {
		// Builder failures are always caller errors: unknown venue,
		// unsupported mode, missing pool or receiver.
		return h.err(c, http.StatusBadRequest, "cannot build payload", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, inst)
}
