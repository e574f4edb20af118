package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/customize"
	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/pricing"
)

// ErrOutOfStock возвращается при добавлении отсутствующего товара.
var ErrOutOfStock = errors.New("product is out of stock")

// CartView описывает содержимое корзины с вычисленными итогами.
type CartView struct {
	Lines []model.CartLine `json:"items"`
	Total int64            `json:"total"`
	Count int              `json:"count"`
}

func viewOf(st *cart.Store) CartView {
	lines := st.Lines()
	return CartView{Lines: lines, Total: pricing.CartTotal(lines), Count: pricing.CartCount(lines)}
}

// Cart возвращает корзину устройства.
func (s *Service) Cart(deviceID string) CartView {
	return viewOf(s.carts.Get(deviceID))
}

// AddProduct добавляет товар в корзину по текущей цене каталога.
func (s *Service) AddProduct(ctx context.Context, deviceID, productID string, quantity int) (cart.Notification, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return cart.Notification{}, err
	}
	if !p.InStock {
		return cart.Notification{}, fmt.Errorf("%w: %s", ErrOutOfStock, p.ID)
	}
	return s.carts.Get(deviceID).Add(customize.ProductLine(*p, quantity)), nil
}

// AddPackage добавляет набор. Без исключённых позиций набор добавляется по базовой цене.
func (s *Service) AddPackage(ctx context.Context, deviceID, packageID string, removed []int, quantity int) (cart.Notification, error) {
	if len(removed) == 0 {
		p, err := s.catalog.GetPackage(ctx, packageID)
		if err != nil {
			return cart.Notification{}, err
		}
		return s.carts.Get(deviceID).Add(customize.PackageLine(*p, quantity)), nil
	}

	cfg, err := s.configure(ctx, model.KindPackage, packageID, removed)
	if err != nil {
		return cart.Notification{}, err
	}

	line, err := cfg.Line(quantity, nil, s.now())
	if err != nil {
		return cart.Notification{}, err
	}
	return s.carts.Get(deviceID).Add(line), nil
}

// AddService добавляет запись на услугу. Каждая запись становится отдельной строкой.
func (s *Service) AddService(ctx context.Context, deviceID, serviceID string, removed []int, booking *model.BookingDetails) (cart.Notification, error) {
	cfg, err := s.configure(ctx, model.KindService, serviceID, removed)
	if err != nil {
		return cart.Notification{}, err
	}

	line, err := cfg.Line(1, booking, s.now())
	if err != nil {
		return cart.Notification{}, err
	}
	return s.carts.Get(deviceID).Add(line), nil
}

// UpdateQuantity задаёт количество строки.
func (s *Service) UpdateQuantity(deviceID string, lineID model.LineID, quantity int) cart.Notification {
	return s.carts.Get(deviceID).UpdateQuantity(lineID, quantity)
}

// RemoveLine удаляет строку корзины.
func (s *Service) RemoveLine(deviceID string, lineID model.LineID) cart.Notification {
	return s.carts.Get(deviceID).Remove(lineID)
}

// ClearCart очищает корзину.
func (s *Service) ClearCart(deviceID string) cart.Notification {
	return s.carts.Get(deviceID).Clear()
}
