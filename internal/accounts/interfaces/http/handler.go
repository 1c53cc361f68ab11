package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"smartwaste-cloud/internal/accounts/application"
	accounts "smartwaste-cloud/internal/accounts/domain"
	"smartwaste-cloud/internal/observability/metrics"
)

// Handler serves consumer registration, login, and support endpoints.
type Handler struct {
	service *application.Service
	logger  *log.Logger
}

// NewHandler constructs the account handler.
func NewHandler(service *application.Service, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("account handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}, nil
}

// ServeHTTP routes the account endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/register":
		h.handleRegister(w, r)
	case "/api/login":
		h.handleLogin(w, r)
	case "/api/support":
		h.handleSupport(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Address       string `json:"address"`
		ContactNumber string `json:"contactNumber"`
		Password      string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	caNumber, err := h.service.Register(r.Context(), req.Name, req.Address, req.ContactNumber, req.Password)
	if err != nil {
		h.logger.Printf("account handler: register: %v", err)
		metrics.IncAccountRequest("register", metrics.ResultError)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error creating account"})
		return
	}
	metrics.IncAccountRequest("register", metrics.ResultSuccess)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "Account created successfully",
		"caNumber": caNumber,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	consumer, token, err := h.service.Login(r.Context(), req.Name, req.Password)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		metrics.IncAccountRequest("login", metrics.ResultError)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Consumer not found"})
		return
	case errors.Is(err, application.ErrBadPassword):
		metrics.IncAccountRequest("login", metrics.ResultError)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid password"})
		return
	case err != nil:
		h.logger.Printf("account handler: login: %v", err)
		metrics.IncAccountRequest("login", metrics.ResultError)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error during login"})
		return
	}

	metrics.IncAccountRequest("login", metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"consumer": map[string]string{
			"name":     consumer.Name,
			"address":  consumer.Address,
			"caNumber": consumer.CANumber,
		},
		"token": token,
	})
}

func (h *Handler) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CANumber string `json:"caNumber"`
		Name     string `json:"name"`
		Subject  string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := h.service.OpenTicket(r.Context(), req.CANumber, req.Name, req.Subject); err != nil {
		h.logger.Printf("account handler: support: %v", err)
		metrics.IncAccountRequest("support", metrics.ResultError)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error submitting support request"})
		return
	}
	metrics.IncAccountRequest("support", metrics.ResultSuccess)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Support request submitted successfully"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
