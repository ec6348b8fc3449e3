package masterdata

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fieldline-hq/fieldline/internal/platform/httpx"
	"github.com/fieldline-hq/fieldline/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/company", h.ShowCompany)
	r.Put("/company", h.UpdateCompany)
	r.Get("/customers", h.ListCustomers)
	r.Post("/customers", h.CreateCustomer)
	r.Get("/customers/{id}", h.ShowCustomer)
	r.Put("/customers/{id}", h.UpdateCustomer)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.ShowProject)
}

type customerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	AddressLine1 string `json:"address_line1" validate:"max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"max=100"`
	PostalCode   string `json:"postal_code" validate:"max=20"`
	Country      string `json:"country" validate:"max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
}

type companyRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	AddressLine1   string `json:"address_line1" validate:"max=200"`
	AddressLine2   string `json:"address_line2" validate:"max=200"`
	City           string `json:"city" validate:"max=100"`
	PostalCode     string `json:"postal_code" validate:"max=20"`
	Country        string `json:"country" validate:"max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"max=50"`
	LogoURL        string `json:"logo_url" validate:"omitempty,url"`
	CurrencySymbol string `json:"currency_symbol" validate:"max=8"`
	DefaultTerms   string `json:"default_terms"`
}

type projectRequest struct {
	CustomerID  int64  `json:"customer_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (h *Handler) ShowCompany(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetCompanyProfile(r.Context())
	if err != nil {
		h.respondError(w, "load company profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	current, err := h.service.GetCompanyProfile(r.Context())
	if err != nil {
		h.respondError(w, "load company profile", err)
		return
	}
	current.Name = req.Name
	current.AddressLine1 = req.AddressLine1
	current.AddressLine2 = req.AddressLine2
	current.City = req.City
	current.PostalCode = req.PostalCode
	current.Country = req.Country
	current.Email = req.Email
	current.Phone = req.Phone
	current.LogoURL = req.LogoURL
	current.CurrencySymbol = req.CurrencySymbol
	current.DefaultTerms = req.DefaultTerms

	if err := h.service.UpdateCompanyProfile(r.Context(), current); err != nil {
		h.respondError(w, "update company profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, perPage := 1, 50
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			perPage = parsed
		}
	}

	customers, total, err := h.service.ListCustomers(r.Context(), r.URL.Query().Get("search"), perPage, (page-1)*perPage)
	if err != nil {
		h.respondError(w, "list customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"customers":  customers,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) ShowCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.respondError(w, "load customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), customerFromRequest(req))
	if err != nil {
		h.respondError(w, "create customer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateCustomer(r.Context(), id, customerFromRequest(req)); err != nil {
		h.respondError(w, "update customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	project, err := h.service.CreateProject(r.Context(), Project{
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(w, "create project", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *Handler) ShowProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "project id must be numeric")
		return
	}
	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		h.respondError(w, "load project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "error", err)
	httpx.RespondError(w, mapError(err))
}

func mapError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	}
	return err
}

func customerFromRequest(req customerRequest) Customer {
	return Customer{
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Email:        req.Email,
		Phone:        req.Phone,
	}
}
