package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/service"
)

const maxUploadSize = 10 << 20

// Checkout оформляет заказ из корзины устройства.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	who := middleware.IdentityFromContext(r.Context())
	order, err := h.service.PlaceOrder(r.Context(), deviceID, who, req)
	if err != nil {
		h.writeError(w, err, "checkout error", zap.String("device", deviceID), zap.String("user", who.UserID))
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) writeOrders(w http.ResponseWriter, orders []model.Order) {
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// GetOrders возвращает историю заказов текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	who := middleware.IdentityFromContext(r.Context())

	orders, err := h.service.OrdersByUser(r.Context(), who)
	if err != nil {
		h.writeError(w, err, "get orders error", zap.String("userID", who.UserID))
		return
	}
	h.writeOrders(w, orders)
}

// AdminOrders возвращает все заказы.
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.AllOrders(r.Context())
	if err != nil {
		h.writeError(w, err, "list orders error")
		return
	}
	h.writeOrders(w, orders)
}

// ServiceRequests возвращает заказы с услугами.
func (h *Handler) ServiceRequests(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ServiceRequests(r.Context())
	if err != nil {
		h.writeError(w, err, "list service requests error")
		return
	}
	h.writeOrders(w, orders)
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateOrderStatus меняет статус заказа.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, err, "update order status error", zap.String("order", id))
		return
	}
	w.WriteHeader(http.StatusOK)
}

type linkResponse struct {
	URL string `json:"url"`
}

// StatusMessageLink возвращает ссылку WhatsApp для уведомления покупателя.
func (h *Handler) StatusMessageLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	link, err := h.service.StatusMessageLink(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "status message link error", zap.String("order", id))
		return
	}
	h.writeJSON(w, http.StatusOK, linkResponse{URL: link})
}

// UploadAsset принимает изображение в поле file и загружает его во внешний хостинг.
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer file.Close()

	link, err := h.service.UploadAsset(r.Context(), hdr.Filename, file)
	if err != nil {
		h.writeError(w, err, "upload asset error", zap.String("file", hdr.Filename))
		return
	}
	h.writeJSON(w, http.StatusCreated, linkResponse{URL: link})
}
