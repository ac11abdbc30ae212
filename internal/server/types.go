package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// QuoteRequest represents a swap quote request. InputAmount is the raw
// integer input amount as a decimal string.
type QuoteRequest struct {
	InputToken  string `json:"inputToken"`
	OutputToken string `json:"outputToken"`
	InputAmount string `json:"inputAmount"`
}

// PayloadRequest represents a request to build a swap instruction for
// an already-quoted swap. OutputAmount is the quoted output being
// executed; minOut derives from it.
type PayloadRequest struct {
	Venue        string `json:"venue"`
	Mode         string `json:"mode"` // aggregator (default), direct, cross_address
	InputToken   string `json:"inputToken"`
	OutputToken  string `json:"outputToken"`
	AmountIn     string `json:"amountIn"`
	OutputAmount string `json:"outputAmount"`
	SlippageBps  uint16 `json:"slippageBps"`
	Receiver     string `json:"receiver,omitempty"` // cross_address mode only
}

// FlagUpsertRequest represents a request to create or update a venue flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Venue name (must match regex pattern)
	Value bool   `json:"value"` // false disables the venue
}

// FlagUpdateRequest represents a request to update an existing venue flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}

// AIAskRequest represents a natural language swap question
type AIAskRequest struct {
	Question string `json:"question"` // Natural language swap question
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	InputToken  string `json:"inputToken"`
	OutputToken string `json:"outputToken"`
	AmountIn    string `json:"amountIn"`
	Answer      string `json:"answer"`
	TookMs      int64  `json:"took_ms"` // Execution time in milliseconds
}
