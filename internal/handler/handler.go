// Package handler содержит HTTP-обработчики API магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/customize"
	"github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/repository"
	"github.com/mmeshcher/vinayak-store/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (model.Identity, error)
	AuthenticateUser(ctx context.Context, login, password string) (model.Identity, error)

	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListPackages(ctx context.Context) ([]model.Package, error)
	GetPackage(ctx context.Context, id string) (*model.Package, error)
	Quote(ctx context.Context, kind model.Kind, id string, removed []int) (customize.Quote, error)
	RefreshCatalog()

	Cart(deviceID string) service.CartView
	AddProduct(ctx context.Context, deviceID, productID string, quantity int) (cart.Notification, error)
	AddPackage(ctx context.Context, deviceID, packageID string, removed []int, quantity int) (cart.Notification, error)
	AddService(ctx context.Context, deviceID, serviceID string, removed []int, booking *model.BookingDetails) (cart.Notification, error)
	UpdateQuantity(deviceID string, lineID model.LineID, quantity int) cart.Notification
	RemoveLine(deviceID string, lineID model.LineID) cart.Notification
	ClearCart(deviceID string) cart.Notification

	PlaceOrder(ctx context.Context, deviceID string, who model.Identity, req service.CheckoutRequest) (*model.Order, error)
	OrdersByUser(ctx context.Context, who model.Identity) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	ServiceRequests(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	StatusMessageLink(ctx context.Context, id string) (string, error)
	UploadAsset(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        http.Handler
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// metrics может быть nil, тогда /metrics не публикуется.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, metrics http.Handler) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        metrics,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	who, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, who)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	who, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, who)
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError переводит ошибку бизнес-логики в HTTP-статус. Внутренние ошибки только логируются.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	var (
		ve     *customize.ValidationError
		status int
	)

	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.As(err, &ve),
		errors.Is(err, customize.ErrOptionOutOfRange),
		errors.Is(err, customize.ErrBookingInPast),
		errors.Is(err, customize.ErrBookingDate),
		errors.Is(err, service.ErrInvalidShipping),
		errors.Is(err, service.ErrUnsupportedPayment),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNotCustomizable),
		errors.Is(err, service.ErrOutOfStock):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, cart.ErrCheckoutInProgress):
		status = http.StatusConflict
	case errors.Is(err, service.ErrOrderNotPlaced), errors.Is(err, service.ErrUploadsDisabled):
		h.logger.Warn(msg, append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}
