package cart

import "github.com/mmeshcher/vinayak-store/internal/model"

// Key определяет, какие строки корзины считаются одной позицией при слиянии.
// Отсутствующий вариант представлен пустой строкой.
type Key struct {
	Kind      model.Kind
	CatalogID string
	Variant   string
}

// KeyOf возвращает ключ идентичности строки.
func KeyOf(l model.CartLine) Key {
	return Key{Kind: l.Kind, CatalogID: l.CatalogID, Variant: l.Variant}
}

// Matches сообщает, относится ли строка к ключу.
func (k Key) Matches(l model.CartLine) bool {
	return k == KeyOf(l)
}

// mergeable сообщает, может ли строка сливаться с другими строками того же ключа.
// Записи на услугу всегда уникальны.
func mergeable(l model.CartLine) bool {
	return !l.IsBooking()
}
