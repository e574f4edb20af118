package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// ListProducts возвращает товары, при указанном ?category= только этой категории.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	products, err := h.service.ListProducts(r.Context(), category)
	if err != nil {
		h.writeError(w, err, "list products error", zap.String("category", category))
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

// GetProduct возвращает карточку товара.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get product error", zap.String("id", id))
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// ListServices возвращает все услуги.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		h.writeError(w, err, "list services error")
		return
	}
	if services == nil {
		services = []model.Service{}
	}
	h.writeJSON(w, http.StatusOK, services)
}

// GetService возвращает карточку услуги.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get service error", zap.String("id", id))
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// ListPackages возвращает все наборы.
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.ListPackages(r.Context())
	if err != nil {
		h.writeError(w, err, "list packages error")
		return
	}
	if packages == nil {
		packages = []model.Package{}
	}
	h.writeJSON(w, http.StatusOK, packages)
}

// GetPackage возвращает карточку набора.
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.GetPackage(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get package error", zap.String("id", id))
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

type quoteRequest struct {
	Removed []int `json:"removed"`
}

// Quote возвращает цену набора или услуги при исключённых позициях.
func (h *Handler) Quote(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "id")
		q, err := h.service.Quote(r.Context(), kind, id, req.Removed)
		if err != nil {
			h.writeError(w, err, "quote error", zap.String("kind", string(kind)), zap.String("id", id))
			return
		}
		h.writeJSON(w, http.StatusOK, q)
	}
}

// RefreshCatalog сбрасывает кеш каталога.
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	h.service.RefreshCatalog()
	w.WriteHeader(http.StatusNoContent)
}
