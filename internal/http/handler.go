// Package http exposes the cart over REST in front of the cart service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nabilnabti/tapeat-cart/internal/cart"
	"github.com/nabilnabti/tapeat-cart/internal/domain"
)

// CartService is the part of the cart service the handlers call.
type CartService interface {
	Get(ctx context.Context, customerID string) *domain.Cart
	AddItem(ctx context.Context, customerID string, in cart.AddItemInput) *domain.Cart
	AddItems(ctx context.Context, customerID string, lines []domain.CartLine) *domain.Cart
	UpdateQuantity(ctx context.Context, customerID, productID string, quantity int, opts *domain.MenuOptions) *domain.Cart
	RemoveItem(ctx context.Context, customerID, productID string, opts *domain.MenuOptions) *domain.Cart
	Clear(ctx context.Context, customerID string) *domain.Cart
	SetScheduledTime(ctx context.Context, customerID string, st *domain.ScheduledTime) *domain.Cart
	Total(ctx context.Context, customerID string) decimal.Decimal
	Checkout(ctx context.Context, customerID string) domain.CheckoutView
}

type CartHandler struct {
	carts  CartService
	logger *zap.Logger
}

func NewCartHandler(carts CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Post("/items/bulk", h.AddItems)
		r.Put("/items/{product_id}", h.UpdateQuantity)
		r.Delete("/items/{product_id}", h.RemoveItem)
		r.Put("/schedule", h.SetSchedule)
	})
	r.Get("/api/v1/checkout", h.Checkout)
}

type AddItemRequestDTO struct {
	ProductID           string              `json:"product_id"`
	Name                string              `json:"name"`
	Image               string              `json:"image,omitempty"`
	Price               decimal.Decimal     `json:"price"`
	Quantity            int                 `json:"quantity"`
	ExcludedIngredients []string            `json:"excluded_ingredients,omitempty"`
	MenuOptions         *domain.MenuOptions `json:"menu_options,omitempty"`
}

type AddItemsRequestDTO struct {
	Lines []domain.CartLine `json:"lines"`
}

type UpdateQuantityRequestDTO struct {
	Quantity    int                 `json:"quantity"`
	MenuOptions *domain.MenuOptions `json:"menu_options,omitempty"`
}

type RemoveItemRequestDTO struct {
	MenuOptions *domain.MenuOptions `json:"menu_options,omitempty"`
}

type ScheduleRequestDTO struct {
	ScheduledTime *domain.ScheduledTime `json:"scheduled_time"`
}

type CartResponseDTO struct {
	Cart  *domain.Cart `json:"cart"`
	Total string       `json:"total"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	h.respondCart(w, r, http.StatusOK, customerID)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	h.carts.AddItem(r.Context(), customerID, cart.AddItemInput{
		ProductID:           req.ProductID,
		Name:                req.Name,
		Image:               req.Image,
		Price:               req.Price,
		Quantity:            req.Quantity,
		ExcludedIngredients: req.ExcludedIngredients,
		MenuOptions:         req.MenuOptions,
	})
	h.respondCart(w, r, http.StatusCreated, customerID)
}

func (h *CartHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	var req AddItemsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "lines must not be empty")
		return
	}

	h.carts.AddItems(r.Context(), customerID, req.Lines)
	h.respondCart(w, r, http.StatusCreated, customerID)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	h.carts.UpdateQuantity(r.Context(), customerID, productID, req.Quantity, req.MenuOptions)
	h.respondCart(w, r, http.StatusOK, customerID)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	// body is optional for DELETE; options narrow the removal to one line
	var req RemoveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.carts.RemoveItem(r.Context(), customerID, productID, req.MenuOptions)
	h.respondCart(w, r, http.StatusOK, customerID)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	h.carts.Clear(r.Context(), customerID)
	h.respondCart(w, r, http.StatusOK, customerID)
}

func (h *CartHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	var req ScheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ScheduledTime != nil && (req.ScheduledTime.Date == "" || req.ScheduledTime.Time == "") {
		respondError(w, http.StatusBadRequest, "invalid_schedule", "scheduled_time needs both date and time")
		return
	}

	h.carts.SetScheduledTime(r.Context(), customerID, req.ScheduledTime)
	h.respondCart(w, r, http.StatusOK, customerID)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerID(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	view := h.carts.Checkout(r.Context(), customerID)
	respondJSON(w, http.StatusOK, view)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, customerID string) {
	respondJSON(w, status, CartResponseDTO{
		Cart:  h.carts.Get(r.Context(), customerID),
		Total: h.carts.Total(r.Context(), customerID).StringFixed(2),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already written, nothing left to do but log
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
