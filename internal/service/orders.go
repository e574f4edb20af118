package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/events"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/validation"
)

var (
	// ErrInvalidShipping возвращается при некорректном адресе доставки.
	ErrInvalidShipping = errors.New("invalid shipping details")
	// ErrUnsupportedPayment возвращается для способа оплаты, отличного от оплаты при получении.
	ErrUnsupportedPayment = errors.New("unsupported payment method")
	// ErrOrderNotPlaced возвращается, если заказ не удалось записать. Корзина при этом сохраняется.
	ErrOrderNotPlaced = errors.New("order could not be placed")
	// ErrInvalidStatus возвращается для статуса вне закрытого набора.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrUploadsDisabled возвращается, если хостинг изображений не настроен.
	ErrUploadsDisabled = errors.New("asset uploads are disabled")
)

// CheckoutRequest содержит данные формы оформления.
type CheckoutRequest struct {
	Shipping      model.ShippingDetails `json:"shippingDetails"`
	PaymentMethod model.PaymentMethod   `json:"paymentMethod"`
}

// PlaceOrder оформляет корзину устройства. Корзина очищается только после успешной записи заказа.
func (s *Service) PlaceOrder(ctx context.Context, deviceID string, who model.Identity, req CheckoutRequest) (*model.Order, error) {
	payment := req.PaymentMethod
	if payment == "" {
		payment = model.PaymentCashOnDelivery
	}
	if payment != model.PaymentCashOnDelivery {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayment, payment)
	}

	if err := validation.ValidateShipping(req.Shipping); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShipping, err)
	}

	userID, email := who.UserID, who.Login
	if who.IsGuest() {
		userID, email = model.GuestUserID, model.GuestUserID
	}

	var placed model.Order
	start := s.now()

	_, err := s.carts.Get(deviceID).Checkout(ctx, func(ctx context.Context, lines []model.CartLine, total int64) (string, error) {
		order := model.Order{
			UserID:        userID,
			UserEmail:     email,
			Items:         lines,
			Total:         total,
			Status:        model.OrderStatusPending,
			Shipping:      req.Shipping,
			PaymentMethod: payment,
		}

		id, err := s.repo.CreateOrder(ctx, order)
		s.metrics.ObserveCheckout(s.now().Sub(start), err)
		if err != nil {
			s.logger.Error("create order", zap.Error(err), zap.String("device", deviceID))
			return "", fmt.Errorf("%w: %w", ErrOrderNotPlaced, err)
		}

		order.ID = id
		order.CreatedAt = s.now()
		placed = order
		return id, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderEvent{
		Type:    events.EventOrderPlaced,
		OrderID: placed.ID,
		UserID:  placed.UserID,
		Total:   placed.Total,
		Status:  placed.Status,
		At:      placed.CreatedAt,
	})

	return &placed, nil
}

func (s *Service) publish(ctx context.Context, e events.OrderEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.metrics.ObserveEventFailure()
		s.logger.Warn("publish order event",
			zap.Error(err),
			zap.String("order", e.OrderID),
			zap.String("type", string(e.Type)),
		)
	}
}

// OrdersByUser возвращает историю заказов пользователя, новые первыми.
func (s *Service) OrdersByUser(ctx context.Context, who model.Identity) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, who.UserID)
}

// AllOrders возвращает все заказы магазина.
func (s *Service) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ServiceRequests возвращает заказы, содержащие хотя бы одну услугу.
func (s *Service) ServiceRequests(ctx context.Context) ([]model.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	var res []model.Order
	for _, o := range orders {
		if o.HasService() {
			res = append(res, o)
		}
	}
	return res, nil
}

// UpdateOrderStatus меняет статус заказа.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}

	s.publish(ctx, events.OrderEvent{
		Type:    events.EventOrderStatusChanged,
		OrderID: id,
		Status:  status,
		At:      s.now(),
	})
	return nil
}

// StatusMessageLink возвращает ссылку WhatsApp с сообщением покупателю о статусе заказа.
func (s *Service) StatusMessageLink(ctx context.Context, id string) (string, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return WhatsAppLink(*o), nil
}

// WhatsAppLink собирает ссылку wa.me на номер из адреса доставки.
func WhatsAppLink(o model.Order) string {
	phone, ok := validation.NormalizePhone(o.Shipping.Phone)
	if !ok {
		phone = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, o.Shipping.Phone)
	}

	short := o.ID
	if len(short) > 8 {
		short = short[:8]
	}

	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.Name+" (x"+strconv.Itoa(it.Quantity)+")")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", o.Shipping.Name)
	fmt.Fprintf(&b, "Your order #%s status: *%s*\n\n", short, strings.ToUpper(string(o.Status)))
	fmt.Fprintf(&b, "Order Total: ₹%d\n", o.Total)
	fmt.Fprintf(&b, "Items: %s\n\n", strings.Join(items, ", "))
	b.WriteString("Thank you for shopping with Vinayak Store!")

	return "https://wa.me/91" + phone + "?" + url.Values{"text": {b.String()}}.Encode()
}

