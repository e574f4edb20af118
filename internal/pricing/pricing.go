// Package pricing вычисляет цены наборов и услуг с учётом исключённых позиций и итоги корзины.
//
// Все суммы в целых рупиях.
package pricing

import "github.com/mmeshcher/vinayak-store/internal/model"

// RemovedValue возвращает сумму скидок за исключённые позиции.
// Индексы вне диапазона пропускаются, повторяющиеся учитываются один раз.
func RemovedValue(items []model.OptionalItem, removed []int) int64 {
	if len(removed) == 0 {
		return 0
	}

	seen := make(map[int]struct{}, len(removed))
	var sum int64
	for _, i := range removed {
		if i < 0 || i >= len(items) {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		if v := items[i].RemovePrice; v > 0 {
			sum += v
		}
	}
	return sum
}

// PackagePrice возвращает цену набора после исключения позиций, не ниже нуля.
func PackagePrice(basePrice int64, items []model.OptionalItem, removed []int) int64 {
	price := basePrice - RemovedValue(items, removed)
	if price < 0 {
		return 0
	}
	return price
}

// ServicePrice возвращает цену услуги: базовая цена за вычетом исключённых позиций (не ниже нуля)
// плюс плата за оформление, которая никогда не уменьшается.
func ServicePrice(basePrice, decorationCharge int64, items []model.OptionalItem, removed []int) int64 {
	if decorationCharge < 0 {
		decorationCharge = 0
	}
	return PackagePrice(basePrice, items, removed) + decorationCharge
}

// CartTotal возвращает сумму стоимости всех строк корзины.
func CartTotal(lines []model.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// CartCount возвращает общее количество единиц в корзине.
func CartCount(lines []model.CartLine) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
