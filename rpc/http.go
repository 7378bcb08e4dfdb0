package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"creatorhub/core/events"
	"creatorhub/native/platform"
	"creatorhub/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeLedgerRejected = -32040
)

// Server exposes the platform ledger over a single JSON-RPC 2.0 endpoint.
// Mutating methods require the configured bearer token; reads are open.
type Server struct {
	engine    *platform.Engine
	recorder  *events.Recorder
	authToken string
	log       *slog.Logger
}

// NewServer constructs the RPC server around a ledger engine. The recorder is
// optional; without it platform_events returns an empty tail.
func NewServer(engine *platform.Engine, recorder *events.Recorder, authToken string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		engine:    engine,
		recorder:  recorder,
		authToken: strings.TrimSpace(authToken),
		log:       log,
	}
}

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      interface{}       `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type rpcHandler struct {
	fn          func(*Server, *RPCRequest) (interface{}, *RPCError)
	requireAuth bool
}

var methodTable = map[string]rpcHandler{
	"platform_register":           {fn: (*Server).handleRegister, requireAuth: true},
	"platform_setSubscriptionFee": {fn: (*Server).handleSetSubscriptionFee, requireAuth: true},
	"platform_postContent":        {fn: (*Server).handlePostContent, requireAuth: true},
	"platform_subscribe":          {fn: (*Server).handleSubscribe, requireAuth: true},
	"platform_tip":                {fn: (*Server).handleTip, requireAuth: true},
	"platform_engage":             {fn: (*Server).handleEngage, requireAuth: true},
	"platform_creatorStats":       {fn: (*Server).handleCreatorStats},
	"platform_content":            {fn: (*Server).handleContent},
	"platform_isSubscribed":       {fn: (*Server).handleIsSubscribed},
	"platform_engagementScore":    {fn: (*Server).handleEngagementScore},
	"platform_events":             {fn: (*Server).handleEvents},
}

// ServeHTTP implements http.Handler for the JSON-RPC endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeHTTPError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeHTTPError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body")
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeHTTPError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload")
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeHTTPError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version")
		return
	}

	handler, ok := methodTable[req.Method]
	if !ok {
		writeHTTPError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "unknown method")
		return
	}
	if handler.requireAuth && !s.authorized(r) {
		writeHTTPError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "missing or invalid bearer token")
		return
	}

	start := time.Now()
	result, rpcErr := handler.fn(s, &req)
	var obsErr error
	if rpcErr != nil {
		obsErr = &methodError{method: req.Method, code: rpcErr.Code}
	}
	observability.ModuleMetrics().Observe("platform", req.Method, start, obsErr)

	if rpcErr != nil {
		s.log.Warn("rpc request rejected", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
		writeJSON(w, http.StatusBadRequest, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Error: rpcErr})
		return
	}
	writeJSON(w, http.StatusOK, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result})
}

type methodError struct {
	method string
	code   int
}

func (e *methodError) Error() string { return e.method }

// authorized checks the bearer token on mutating methods. An empty configured
// token disables auth, matching a local development node.
func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTTPError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	writeJSON(w, status, RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}

func errInvalidParams(message string) *RPCError {
	return &RPCError{Code: codeInvalidParams, Message: message}
}

func errLedger(err error) *RPCError {
	return &RPCError{Code: codeLedgerRejected, Message: err.Error()}
}

// decodeParams unmarshals the single parameter object every platform method
// expects.
func decodeParams(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) != 1 {
		return errInvalidParams("exactly one parameter object expected")
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return errInvalidParams("invalid parameter object")
	}
	return nil
}
