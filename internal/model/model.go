// Package model содержит доменные сущности магазина: каталог, корзину, заказы и пользователей.
package model

import (
	"fmt"
	"time"
)

// Kind описывает тип позиции каталога.
type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
	KindPackage Kind = "package"
)

// Valid сообщает, относится ли значение к известным типам позиций.
func (k Kind) Valid() bool {
	switch k {
	case KindProduct, KindService, KindPackage:
		return true
	default:
		return false
	}
}

// LineID содержит синтетический идентификатор строки корзины, уникальный в пределах корзины.
type LineID string

// BookingDetails содержит дату, время и место оказания услуги.
type BookingDetails struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
}

// CartLine описывает одну строку корзины.
//
// Цена фиксируется в момент добавления строки и не пересчитывается по каталогу.
// Набор необязательных полей зависит от Kind: см. Validate.
type CartLine struct {
	ID            LineID          `json:"lineId"`
	CatalogID     string          `json:"id"`
	Kind          Kind            `json:"type"`
	Name          string          `json:"name"`
	UnitPrice     int64           `json:"price"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	Variant       string          `json:"variant,omitempty"`
	Customization []string        `json:"customization,omitempty"`
	Booking       *BookingDetails `json:"bookingDetails,omitempty"`
}

// IsBooking сообщает, является ли строка записью на услугу с конкретными датой, временем и местом.
func (l CartLine) IsBooking() bool {
	return l.Kind == KindService && l.Booking != nil
}

// Subtotal возвращает стоимость строки с учётом количества.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Validate проверяет, что набор полей строки согласован с её типом.
func (l CartLine) Validate() error {
	if l.CatalogID == "" {
		return fmt.Errorf("cart line: empty catalog id")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("cart line %s: quantity %d below 1", l.CatalogID, l.Quantity)
	}
	if l.UnitPrice < 0 {
		return fmt.Errorf("cart line %s: negative price", l.CatalogID)
	}

	switch l.Kind {
	case KindProduct:
		if len(l.Customization) > 0 || l.Booking != nil {
			return fmt.Errorf("cart line %s: product cannot be customized or booked", l.CatalogID)
		}
	case KindPackage:
		if l.Booking != nil {
			return fmt.Errorf("cart line %s: package cannot carry booking details", l.CatalogID)
		}
	case KindService:
	default:
		return fmt.Errorf("cart line %s: unknown kind %q", l.CatalogID, l.Kind)
	}

	return nil
}

// Clone возвращает глубокую копию строки.
func (l CartLine) Clone() CartLine {
	c := l
	if l.Customization != nil {
		c.Customization = append([]string(nil), l.Customization...)
	}
	if l.Booking != nil {
		b := *l.Booking
		c.Booking = &b
	}
	return c
}

// OptionalItem описывает необязательную составляющую набора или услуги.
type OptionalItem struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	RemovePrice int64  `json:"removePrice"`
	Image       string `json:"image,omitempty"`
}

// Product описывает товар каталога.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	InStock     bool   `json:"inStock"`
}

// Service описывает услугу (оформление, проведение обряда и т.п.).
type Service struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Category         string         `json:"category"`
	Price            int64          `json:"price"`
	DecorationCharge int64          `json:"decorationCharge"`
	Description      string         `json:"description"`
	Image            string         `json:"image"`
	Items            []OptionalItem `json:"items"`
}

// Package описывает готовый набор товаров с ценой-предложением.
type Package struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	BasePrice      int64          `json:"basePrice"`
	TotalWorth     int64          `json:"totalWorth"`
	IsCustomizable bool           `json:"isCustomizable"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	Items          []OptionalItem `json:"items"`
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid сообщает, входит ли статус в закрытый набор статусов заказа.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentMethod описывает способ оплаты.
type PaymentMethod string

// PaymentCashOnDelivery означает оплату при получении, единственный поддерживаемый способ.
const PaymentCashOnDelivery PaymentMethod = "cod"

// ShippingDetails содержит контактные данные и адрес доставки.
type ShippingDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Order хранит неизменяемый снимок корзины на момент оформления.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	UserEmail     string          `json:"userEmail"`
	Items         []CartLine      `json:"items"`
	Total         int64           `json:"total"`
	Status        OrderStatus     `json:"status"`
	Shipping      ShippingDetails `json:"shippingDetails"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// HasService сообщает, содержит ли заказ хотя бы одну услугу.
func (o Order) HasService() bool {
	for _, it := range o.Items {
		if it.Kind == KindService {
			return true
		}
	}
	return false
}

// Role описывает роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного пользователя магазина.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// GuestUserID используется вместо идентификатора пользователя для анонимных покупателей.
const GuestUserID = "guest"

// Identity описывает текущего покупателя.
type Identity struct {
	UserID string
	Login  string
	Role   Role
}

// Guest возвращает анонимную идентичность.
func Guest() Identity {
	return Identity{UserID: GuestUserID, Login: GuestUserID, Role: RoleUser}
}

// IsGuest сообщает, является ли покупатель анонимным.
func (i Identity) IsGuest() bool {
	return i.UserID == "" || i.UserID == GuestUserID
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (i Identity) IsAdmin() bool {
	return !i.IsGuest() && i.Role == RoleAdmin
}
