// Package cart реализует корзину покупателя: правила идентичности строк, слияние,
// сквозное сохранение и оформление заказа.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/vinayak-store/internal/model"
	"github.com/mmeshcher/vinayak-store/internal/pricing"
)

var (
	// ErrCheckoutInProgress возвращается при повторной попытке оформления, пока первая не завершилась.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	// ErrEmptyCart возвращается при попытке оформить пустую корзину.
	ErrEmptyCart = errors.New("cart is empty")
)

// Persister сохраняет и восстанавливает содержимое корзины.
type Persister interface {
	LoadCart() ([]model.CartLine, error)
	SaveCart(lines []model.CartLine) error
}

// Observer получает исход каждой операции над корзиной.
type Observer interface {
	ObserveCart(outcome Outcome)
}

// SubmitFunc записывает заказ во внешнее хранилище и возвращает его идентификатор.
type SubmitFunc func(ctx context.Context, lines []model.CartLine, total int64) (string, error)

// Store хранит строки корзины одного устройства.
// Каждая изменяющая операция сразу сохраняется через Persister.
type Store struct {
	mu          sync.Mutex
	lines       []model.CartLine
	persister   Persister
	logger      *zap.Logger
	observer    Observer
	newID       func() model.LineID
	checkingOut bool
}

// Option настраивает Store.
type Option func(*Store)

// WithObserver подключает наблюдателя за операциями.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithIDGenerator задаёт генератор идентификаторов строк.
func WithIDGenerator(f func() model.LineID) Option {
	return func(s *Store) { s.newID = f }
}

func newLineID() model.LineID {
	return model.LineID(uuid.NewString())
}

// New создаёт корзину и восстанавливает её сохранённое состояние.
// Если сохранённые данные не читаются, корзина начинается пустой.
func New(p Persister, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		persister: p,
		logger:    logger,
		newID:     newLineID,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore()
	return s
}

func (s *Store) restore() {
	if s.persister == nil {
		return
	}

	saved, err := s.persister.LoadCart()
	if err != nil {
		s.logger.Warn("saved cart unreadable, starting empty", zap.Error(err))
		return
	}

	seen := make(map[model.LineID]struct{}, len(saved))
	for _, l := range saved {
		if err := l.Validate(); err != nil {
			s.logger.Warn("dropping invalid saved cart line", zap.Error(err))
			continue
		}
		if _, dup := seen[l.ID]; l.ID == "" || dup {
			l.ID = s.newID()
		}
		seen[l.ID] = struct{}{}
		s.lines = append(s.lines, l)
	}
}

// Lines возвращает копию строк корзины в порядке добавления.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Total возвращает сумму корзины, вычисленную заново.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.CartTotal(s.lines)
}

// Count возвращает количество единиц в корзине, вычисленное заново.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.CartCount(s.lines)
}

// Add добавляет строку в корзину.
//
// Запись на услугу всегда добавляется отдельной строкой. Остальные строки с тем же ключом
// сливаются: количество суммируется, цена существующей строки сохраняется.
func (s *Store) Add(line model.CartLine) Notification {
	if err := line.Validate(); err != nil {
		return s.notify(Notification{Outcome: OutcomeRejected, Message: err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line = line.Clone()

	if mergeable(line) {
		key := KeyOf(line)
		for i := range s.lines {
			if !mergeable(s.lines[i]) || !key.Matches(s.lines[i]) {
				continue
			}
			s.lines[i].Quantity += line.Quantity
			s.persist()
			return s.notify(Notification{
				Outcome: OutcomeQuantityUpdated,
				LineID:  s.lines[i].ID,
				Message: fmt.Sprintf("Updated %s quantity", s.lines[i].Name),
			})
		}
	}

	line.ID = s.newID()
	s.lines = append(s.lines, line)
	s.persist()

	return s.notify(Notification{
		Outcome: OutcomeAdded,
		LineID:  line.ID,
		Message: fmt.Sprintf("Added %s to cart", line.Name),
	})
}

// Remove удаляет строку по идентификатору. Отсутствие строки не является ошибкой.
func (s *Store) Remove(id model.LineID) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return s.notify(Notification{Outcome: OutcomeUnchanged, LineID: id})
	}

	s.removeAt(idx)
	return s.notify(Notification{Outcome: OutcomeRemoved, LineID: id, Message: "Item removed from cart"})
}

// RemoveByKey удаляет строку по ключу идентичности.
// Если ключу соответствует несколько записей на услугу, ничего не удаляется.
func (s *Store) RemoveByKey(key Key) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, n := s.findKey(key)
	switch {
	case n == 0:
		return s.notify(Notification{Outcome: OutcomeUnchanged})
	case n > 1:
		return s.notify(Notification{Outcome: OutcomeAmbiguous, Message: "Several bookings match, remove them by line"})
	}

	id := s.lines[idx].ID
	s.removeAt(idx)
	return s.notify(Notification{Outcome: OutcomeRemoved, LineID: id, Message: "Item removed from cart"})
}

// UpdateQuantity задаёт количество строки. Значения меньше единицы отклоняются без изменений.
func (s *Store) UpdateQuantity(id model.LineID, quantity int) Notification {
	if quantity < 1 {
		return s.notify(Notification{Outcome: OutcomeRejected, LineID: id, Message: "Quantity must be at least 1"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return s.notify(Notification{Outcome: OutcomeUnchanged, LineID: id})
	}

	return s.setQuantity(idx, quantity)
}

// UpdateQuantityByKey задаёт количество строки по ключу идентичности.
func (s *Store) UpdateQuantityByKey(key Key, quantity int) Notification {
	if quantity < 1 {
		return s.notify(Notification{Outcome: OutcomeRejected, Message: "Quantity must be at least 1"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, n := s.findKey(key)
	switch {
	case n == 0:
		return s.notify(Notification{Outcome: OutcomeUnchanged})
	case n > 1:
		return s.notify(Notification{Outcome: OutcomeAmbiguous, Message: "Several bookings match, update them by line"})
	}

	return s.setQuantity(idx, quantity)
}

// Clear очищает корзину.
func (s *Store) Clear() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist()
	return s.notify(Notification{Outcome: OutcomeCleared, Message: "Cart cleared"})
}

// Checkout передаёт снимок корзины в submit и после успешной записи заказа убирает из корзины
// оформленные строки. При ошибке корзина остаётся без изменений.
// Одновременно выполняется не более одного оформления.
func (s *Store) Checkout(ctx context.Context, submit SubmitFunc) (string, error) {
	s.mu.Lock()
	if s.checkingOut {
		s.mu.Unlock()
		return "", ErrCheckoutInProgress
	}
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return "", ErrEmptyCart
	}
	lines := s.snapshot()
	total := pricing.CartTotal(lines)
	s.checkingOut = true
	s.mu.Unlock()

	succeeded := false
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.checkingOut = false
		if succeeded {
			s.settle(lines)
		}
	}()

	orderID, err := submit(ctx, lines, total)
	if err != nil {
		return "", err
	}

	succeeded = true
	return orderID, nil
}

// settle убирает из корзины оформленные строки. Строки, добавленные во время записи заказа,
// остаются, а у строк с увеличенным за это время количеством остаётся только прибавка.
func (s *Store) settle(ordered []model.CartLine) {
	orderedQty := make(map[model.LineID]int, len(ordered))
	for _, l := range ordered {
		orderedQty[l.ID] = l.Quantity
	}

	kept := s.lines[:0:0]
	for _, l := range s.lines {
		q, ok := orderedQty[l.ID]
		if !ok {
			kept = append(kept, l)
			continue
		}
		if l.Quantity > q {
			l.Quantity -= q
			kept = append(kept, l)
		}
	}

	s.lines = kept
	s.persist()
}

func (s *Store) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkingOut
}

func (s *Store) setQuantity(idx, quantity int) Notification {
	s.lines[idx].Quantity = quantity
	s.persist()
	return s.notify(Notification{
		Outcome: OutcomeQuantitySet,
		LineID:  s.lines[idx].ID,
		Message: fmt.Sprintf("Updated %s quantity", s.lines[idx].Name),
	})
}

func (s *Store) removeAt(idx int) {
	s.lines = append(s.lines[:idx:idx], s.lines[idx+1:]...)
	s.persist()
}

func (s *Store) indexOf(id model.LineID) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findKey(key Key) (idx, n int) {
	idx = -1
	for i := range s.lines {
		if key.Matches(s.lines[i]) {
			if idx < 0 {
				idx = i
			}
			n++
		}
	}
	return idx, n
}

func (s *Store) snapshot() []model.CartLine {
	out := make([]model.CartLine, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l.Clone())
	}
	return out
}

// persist вызывается под мьютексом. Ошибка сохранения только логируется.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveCart(s.snapshot()); err != nil {
		s.logger.Error("save cart", zap.Error(err))
	}
}

func (s *Store) notify(n Notification) Notification {
	if s.observer != nil {
		s.observer.ObserveCart(n.Outcome)
	}
	return n
}
