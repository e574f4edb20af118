// Package customize хранит рабочее состояние настройки набора или услуги перед добавлением в корзину
// и собирает из него строку корзины.
package customize

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/pricing"
)

// ErrOptionOutOfRange возвращается при обращении к несуществующей позиции.
var ErrOptionOutOfRange = errors.New("optional item index out of range")

const variantPrefix = "custom-"

// Configuration хранит настройку набора или услуги: базовую цену, необязательные позиции и исключённые из них.
type Configuration struct {
	kind       model.Kind
	catalogID  string
	name       string
	image      string
	basePrice  int64
	decoration int64
	items      []model.OptionalItem
	removed    map[int]struct{}
}

// NewPackage начинает настройку набора.
func NewPackage(p model.Package) *Configuration {
	return &Configuration{
		kind:      model.KindPackage,
		catalogID: p.ID,
		name:      p.Name,
		image:     p.Image,
		basePrice: p.BasePrice,
		items:     append([]model.OptionalItem(nil), p.Items...),
		removed:   make(map[int]struct{}),
	}
}

// NewService начинает настройку услуги.
func NewService(s model.Service) *Configuration {
	return &Configuration{
		kind:       model.KindService,
		catalogID:  s.ID,
		name:       s.Name,
		image:      s.Image,
		basePrice:  s.Price,
		decoration: s.DecorationCharge,
		items:      append([]model.OptionalItem(nil), s.Items...),
		removed:    make(map[int]struct{}),
	}
}

// Kind возвращает тип настраиваемой позиции.
func (c *Configuration) Kind() model.Kind { return c.kind }

// Items возвращает необязательные позиции.
func (c *Configuration) Items() []model.OptionalItem {
	return append([]model.OptionalItem(nil), c.items...)
}

// Toggle переключает позицию между «включена» и «исключена».
func (c *Configuration) Toggle(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("%w: %d", ErrOptionOutOfRange, i)
	}
	if _, ok := c.removed[i]; ok {
		delete(c.removed, i)
	} else {
		c.removed[i] = struct{}{}
	}
	return nil
}

// SetRemoved заменяет набор исключённых позиций. При ошибке набор не меняется.
func (c *Configuration) SetRemoved(indices []int) error {
	next := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(c.items) {
			return fmt.Errorf("%w: %d", ErrOptionOutOfRange, i)
		}
		next[i] = struct{}{}
	}
	c.removed = next
	return nil
}

// IsRemoved сообщает, исключена ли позиция.
func (c *Configuration) IsRemoved(i int) bool {
	_, ok := c.removed[i]
	return ok
}

// RemovedIndices возвращает исключённые позиции по возрастанию.
func (c *Configuration) RemovedIndices() []int {
	out := make([]int, 0, len(c.removed))
	for i := range c.removed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// RemovedNames возвращает названия исключённых позиций в порядке их следования.
func (c *Configuration) RemovedNames() []string {
	idx := c.RemovedIndices()
	if len(idx) == 0 {
		return nil
	}
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, c.items[i].Name)
	}
	return names
}

// Price возвращает текущую цену с учётом исключённых позиций.
func (c *Configuration) Price() int64 {
	removed := c.RemovedIndices()
	if c.kind == model.KindService {
		return pricing.ServicePrice(c.basePrice, c.decoration, c.items, removed)
	}
	return pricing.PackagePrice(c.basePrice, c.items, removed)
}

// OriginalPrice возвращает цену без исключений.
func (c *Configuration) OriginalPrice() int64 {
	if c.kind == model.KindService {
		return pricing.ServicePrice(c.basePrice, c.decoration, c.items, nil)
	}
	return pricing.PackagePrice(c.basePrice, c.items, nil)
}

// Savings возвращает экономию относительно исходной цены.
func (c *Configuration) Savings() int64 {
	return c.OriginalPrice() - c.Price()
}

// VariantKey возвращает отпечаток набора исключённых позиций.
// Одинаковые наборы дают одинаковый ключ независимо от порядка выбора; без исключений ключ пуст.
func (c *Configuration) VariantKey() string {
	idx := c.RemovedIndices()
	if len(idx) == 0 {
		return ""
	}
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, strconv.Itoa(i))
	}
	return variantPrefix + strings.Join(parts, "-")
}

// Quote содержит предварительный расчёт для экрана настройки.
type Quote struct {
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"originalPrice"`
	Savings       int64    `json:"savings"`
	Variant       string   `json:"variant,omitempty"`
	Removed       []int    `json:"removed"`
	RemovedNames  []string `json:"removedNames,omitempty"`
}

// Quote возвращает текущий расчёт.
func (c *Configuration) Quote() Quote {
	return Quote{
		Price:         c.Price(),
		OriginalPrice: c.OriginalPrice(),
		Savings:       c.Savings(),
		Variant:       c.VariantKey(),
		Removed:       c.RemovedIndices(),
		RemovedNames:  c.RemovedNames(),
	}
}

// Line собирает строку корзины по текущей настройке. Цена фиксируется в момент вызова.
// Для услуги обязательны данные записи; для набора они должны отсутствовать.
func (c *Configuration) Line(quantity int, booking *model.BookingDetails, today time.Time) (model.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	line := model.CartLine{
		CatalogID:     c.catalogID,
		Kind:          c.kind,
		Name:          c.name,
		UnitPrice:     c.Price(),
		Image:         c.image,
		Quantity:      quantity,
		Variant:       c.VariantKey(),
		Customization: c.RemovedNames(),
	}

	switch c.kind {
	case model.KindService:
		if err := ValidateBooking(booking, today); err != nil {
			return model.CartLine{}, err
		}
		b := *booking
		line.Booking = &b
		line.Quantity = 1
	case model.KindPackage:
		if booking != nil {
			return model.CartLine{}, fmt.Errorf("package %s: booking details not allowed", c.catalogID)
		}
	}

	return line, nil
}

// ProductLine собирает строку корзины для товара.
func ProductLine(p model.Product, quantity int) model.CartLine {
	if quantity < 1 {
		quantity = 1
	}
	return model.CartLine{
		CatalogID: p.ID,
		Kind:      model.KindProduct,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}

// PackageLine собирает строку для набора без настройки, по базовой цене.
func PackageLine(p model.Package, quantity int) model.CartLine {
	if quantity < 1 {
		quantity = 1
	}
	return model.CartLine{
		CatalogID: p.ID,
		Kind:      model.KindPackage,
		Name:      p.Name,
		UnitPrice: p.BasePrice,
		Image:     p.Image,
		Quantity:  quantity,
	}
}
