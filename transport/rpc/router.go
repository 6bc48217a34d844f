package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
)

const maxBodyBytes = 1 << 20

// Router maps POST /rpc envelopes onto the game handlers.
type Router struct {
	logger   *slog.Logger
	manager  gameManager
	validate *validator.Validate

	handlers map[string]handlerFunc
}

func NewRouter(logger *slog.Logger, manager gameManager) *Router {
	router := &Router{
		logger:   logger.With("component", "rpc"),
		manager:  manager,
		validate: newValidator(),

		handlers: make(map[string]handlerFunc),
	}

	router.registerHandlers()

	return router
}

// Handler returns the HTTP routes served by the RPC endpoint.
func (that *Router) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/rpc", that.handleRPC).Methods(http.MethodPost)
	router.HandleFunc("/rpc", handlePreflight).Methods(http.MethodOptions)
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func (that *Router) handleRPC(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRPC")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read request body", "error", err)
		that.writeJSON(w, http.StatusBadRequest, errorMessage{Message: "Invalid JSON format"})
		return
	}

	request, err := that.decodeRequest(body)
	if err != nil {
		that.writeError(w, err)
		return
	}

	log = log.With("rpc", request.Method)

	handler, ok := that.handlers[request.Method]
	if !ok {
		that.writeError(w, invalidParams(fmt.Sprintf("method: unknown method %q", request.Method)))
		return
	}

	result, err := handler(r.Context(), request.Params)
	if err != nil {
		if rpcErr, isRPC := apperror.AsRPCError(err); isRPC {
			log.Info("request rejected", "code", rpcErr.Code, "message", rpcErr.Message)
			that.writeJSON(w, http.StatusOK, Response{ID: request.ID, Error: rpcErr})
			return
		}

		var badRequest *BadRequestError
		if !errors.As(err, &badRequest) {
			log.Error("failed to handle request", "error", err)
		}

		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, Response{ID: request.ID, Result: result})
}

func (that *Router) decodeRequest(body []byte) (*Request, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &BadRequestError{Message: "Missing request body"}
	}

	if !json.Valid(body) {
		return nil, &BadRequestError{Message: "Invalid JSON format"}
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, invalidParams(fmt.Sprintf("%s: Expected %s, received %s", typeErr.Field, typeErr.Type.Kind(), typeErr.Value))
		}

		return nil, invalidParams("Expected object")
	}

	if err := validateID(request.ID); err != nil {
		return nil, err
	}

	if request.Method == "" {
		return nil, invalidParams("method: Required")
	}

	return &request, nil
}

func (that *Router) writeError(w http.ResponseWriter, err error) {
	var badRequest *BadRequestError
	if errors.As(err, &badRequest) {
		that.writeJSON(w, http.StatusBadRequest, errorMessage{Message: badRequest.Message})
		return
	}

	that.writeJSON(w, http.StatusInternalServerError, errorMessage{Message: "Internal Server Error"})
}

func (that *Router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
