package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/service"
)

type cartResponse struct {
	Notice *cart.Notification `json:"notice,omitempty"`
	service.CartView
}

func (h *Handler) deviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.DeviceIDFromContext(r.Context())
	if !ok {
		h.logger.Error("device session missing", zap.String("uri", r.RequestURI))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return id, ok
}

// writeCart отвечает содержимым корзины и уведомлением. Отклонённая операция даёт 422.
func (h *Handler) writeCart(w http.ResponseWriter, deviceID string, n cart.Notification) {
	status := http.StatusOK
	switch n.Outcome {
	case cart.OutcomeAdded:
		status = http.StatusCreated
	case cart.OutcomeRejected:
		status = http.StatusUnprocessableEntity
	case cart.OutcomeAmbiguous:
		status = http.StatusConflict
	}
	h.writeJSON(w, status, cartResponse{Notice: &n, CartView: h.service.Cart(deviceID)})
}

// GetCart возвращает корзину устройства.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{CartView: h.service.Cart(deviceID)})
}

type addProductRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// AddProduct добавляет товар в корзину.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	n, err := h.service.AddProduct(r.Context(), deviceID, req.ID, req.Quantity)
	if err != nil {
		h.writeError(w, err, "add product error", zap.String("id", req.ID))
		return
	}
	h.writeCart(w, deviceID, n)
}

type addPackageRequest struct {
	ID       string `json:"id"`
	Removed  []int  `json:"removed"`
	Quantity int    `json:"quantity"`
}

// AddPackage добавляет набор, возможно с исключёнными позициями.
func (h *Handler) AddPackage(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var req addPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	n, err := h.service.AddPackage(r.Context(), deviceID, req.ID, req.Removed, req.Quantity)
	if err != nil {
		h.writeError(w, err, "add package error", zap.String("id", req.ID))
		return
	}
	h.writeCart(w, deviceID, n)
}

type addServiceRequest struct {
	ID      string                `json:"id"`
	Removed []int                 `json:"removed"`
	Booking *model.BookingDetails `json:"bookingDetails"`
}

// AddService добавляет запись на услугу.
func (h *Handler) AddService(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var req addServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	n, err := h.service.AddService(r.Context(), deviceID, req.ID, req.Removed, req.Booking)
	if err != nil {
		h.writeError(w, err, "add service error", zap.String("id", req.ID))
		return
	}
	h.writeCart(w, deviceID, n)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateLine задаёт количество строки корзины.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	lineID := model.LineID(chi.URLParam(r, "lineID"))
	h.writeCart(w, deviceID, h.service.UpdateQuantity(deviceID, lineID, req.Quantity))
}

// RemoveLine удаляет строку корзины.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	lineID := model.LineID(chi.URLParam(r, "lineID"))
	h.writeCart(w, deviceID, h.service.RemoveLine(deviceID, lineID))
}

// ClearCart очищает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}
	h.writeCart(w, deviceID, h.service.ClearCart(deviceID))
}
