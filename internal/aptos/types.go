package aptos

import "encoding/json"

// Resource is a single Move resource returned by the fullnode
type Resource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ViewRequest is the body of a POST /view call
type ViewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// PendingTransaction is the subset of the transaction-by-hash response the
// client needs to decide whether a submitted transaction landed
type PendingTransaction struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status,omitempty"`
}

// SubmitResponse is returned by POST /transactions
type SubmitResponse struct {
	Hash string `json:"hash"`
}

// NodeError is the JSON error body the fullnode returns on non-2xx responses
type NodeError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

func (e *NodeError) Error() string {
	if e.ErrorCode != "" {
		return e.ErrorCode + ": " + e.Message
	}
	return e.Message
}
