package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"rwa-mint/internal/app"
	"rwa-mint/internal/metrics"
	"rwa-mint/internal/model"
	"rwa-mint/internal/ports/http/middleware/auth"
	"rwa-mint/internal/ports/http/middleware/cors"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type server struct {
	app        *app.App
	httpServer *http.Server
	addr       string
	logger     *zap.Logger
	// nil disables the token check
	validator *auth.TokenValidator
	origins   []string
}

func (ser *server) badRequest(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusBadRequest, message)
	ser.logger.Warn(message)
}

func (ser *server) notFound(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusNotFound, message)
	ser.logger.Debug(message)
}

func (ser *server) serverError(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusInternalServerError, message)
	ser.logger.Error(message)
}

func (ser *server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write an error message: " + err.Error())
	}
}

// appError picks the status from the error returned by the app.
func (ser *server) appError(w http.ResponseWriter, message string, err error) {
	message = message + ": " + err.Error()

	switch {
	case errors.Is(err, model.ErrNotFound):
		ser.notFound(w, message)
	case errors.Is(err, app.ErrAlreadyMinted):
		ser.writeError(w, http.StatusConflict, message)
		ser.logger.Warn(message)
	case errors.Is(err, app.ErrInvalidInput):
		ser.badRequest(w, message)
	case errors.Is(err, app.ErrChainDisabled), errors.Is(err, app.ErrVerifierDisabled):
		ser.writeError(w, http.StatusServiceUnavailable, message)
		ser.logger.Warn(message)
	default:
		ser.serverError(w, message)
	}
}

func (ser *server) respond(w http.ResponseWriter, status int, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		ser.logger.Error("failed to write the response: " + err.Error())
	}
}

func (ser *server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	sessions := router.PathPrefix("/api/sessions").Subrouter()
	if ser.validator != nil {
		sessions.Use(ser.validator.Middleware)
	}

	sessions.HandleFunc("", ser.createSession).Methods(http.MethodPost)
	sessions.HandleFunc("/{sessionID}", ser.getSession).Methods(http.MethodGet)
	sessions.HandleFunc("/{sessionID}", ser.deleteSession).Methods(http.MethodDelete)
	sessions.HandleFunc("/{sessionID}/fields", ser.patchFields).Methods(http.MethodPatch)
	sessions.HandleFunc("/{sessionID}/image", ser.putImage).Methods(http.MethodPut)
	sessions.HandleFunc("/{sessionID}/source", ser.putSource).Methods(http.MethodPut)
	sessions.HandleFunc("/{sessionID}/valuation", ser.getValuation).Methods(http.MethodGet)
	sessions.HandleFunc("/{sessionID}/attributes", ser.postAttribute).Methods(http.MethodPost)
	sessions.HandleFunc("/{sessionID}/attributes/{index}", ser.putAttribute).Methods(http.MethodPut)
	sessions.HandleFunc("/{sessionID}/attributes/{index}", ser.deleteAttribute).Methods(http.MethodDelete)
	sessions.HandleFunc("/{sessionID}/step", ser.postStep).Methods(http.MethodPost)
	sessions.HandleFunc("/{sessionID}/legal-contract", ser.getLegalContract).Methods(http.MethodGet)
	sessions.HandleFunc("/{sessionID}/legal-contract", ser.putLegalContract).Methods(http.MethodPut)
	sessions.HandleFunc("/{sessionID}/submit", ser.postSubmit).Methods(http.MethodPost)
	sessions.HandleFunc("/{sessionID}/mint-calldata", ser.getMintCalldata).Methods(http.MethodGet)
	sessions.HandleFunc("/{sessionID}/mint", ser.postMint).Methods(http.MethodPost)

	router.HandleFunc("/api/submissions/{cid}", ser.getSubmission).Methods(http.MethodGet)
	router.HandleFunc("/api/assets/{tokenID}", ser.getAsset).Methods(http.MethodGet)
	router.HandleFunc("/api/verifier/sign-in", ser.getVerifierSignIn).Methods(http.MethodGet)
	router.HandleFunc("/api/verifier/requests/{sessionID}", ser.getVerifierRequest).Methods(http.MethodGet)
}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

func NewServer(logger *zap.Logger, a *app.App, address string, validator *auth.TokenValidator, allowedOrigins ...string) *server {
	return &server{
		app:       a,
		addr:      address,
		logger:    logger,
		validator: validator,
		origins:   allowedOrigins,
	}
}

func (ser *server) Handler() http.Handler {
	router := mux.NewRouter()
	ser.registerHandlers(router)

	return cors.AddCorsPolicy(router, ser.origins...)
}

func (ser *server) Run() error {
	ser.httpServer = &http.Server{
		Handler: ser.Handler(),
		Addr:    ser.addr,
	}

	ser.logger.Info("listening on " + ser.addr)

	err := ser.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (ser *server) Shutdown(ctx context.Context) error {
	if ser.httpServer == nil {
		return nil
	}
	return ser.httpServer.Shutdown(ctx)
}

func normalize(param string) string {
	return strings.TrimSpace(param)
}
