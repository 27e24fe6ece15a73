package callable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"
)

// Caller is the verified identity behind a request. Functions receive nil for anonymous calls.
type Caller struct {
	UID   string
	Token *auth.Token
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Func func(ctx context.Context, caller *Caller, data json.RawMessage) (interface{}, error)

// Handler speaks the Firebase callable protocol: a POSTed {"data": ...} body and an
// optional "Authorization: Bearer <ID token>" header, answered with {"result": ...}
// or {"error": {"status", "message"}}.
type Handler struct {
	verifier TokenVerifier
	fn       Func
}

func NewHandler(verifier TokenVerifier, fn Func) *Handler {
	return &Handler{verifier: verifier, fn: fn}
}

type request struct {
	Data json.RawMessage `json:"data"`
}

type response struct {
	Result interface{} `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	caller, err := h.caller(r)
	if err != nil {
		log.Warnf("rejecting callable request: %s", err)
		WriteError(w, NewError(StatusUnauthenticated, "invalid ID token"))
		return
	}

	data, reqErr := readData(r)
	if reqErr != nil {
		// Identity is reported before the shape of the request.
		if caller == nil {
			WriteError(w, NewError(StatusUnauthenticated, "unauthenticated"))
			return
		}
		WriteError(w, reqErr)
		return
	}

	result, err := h.fn(r.Context(), caller, data)
	if err != nil {
		var callErr *Error
		if errors.As(err, &callErr) {
			WriteError(w, callErr)
			return
		}

		log.Errorf("callable function failed: %s", err)
		WriteError(w, ErrInternal)
		return
	}

	writeJSON(w, http.StatusOK, response{Result: result})
}

func readData(r *http.Request) (json.RawMessage, *Error) {
	if r.Method != http.MethodPost {
		return nil, NewError(StatusInvalidArgument, "request method must be POST")
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, NewError(StatusInvalidArgument, "request body must be a JSON object with a data field")
	}
	return req.Data, nil
}

// setCORSHeaders mirrors the caller's origin the way hosted callable functions do.
func setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Add("Vary", "Origin")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func (h *Handler) caller(r *http.Request) (*Caller, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	idToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if idToken == "" || idToken == header {
		return nil, errors.New("malformed authorization header")
	}

	token, err := h.verifier.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		return nil, err
	}

	return &Caller{UID: token.UID, Token: token}, nil
}

// WriteError answers with the callable error envelope and its HTTP status.
func WriteError(w http.ResponseWriter, err *Error) {
	writeJSON(w, err.Status.HTTPStatus(), response{Error: err})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("writing callable response: %s", err)
	}
}
