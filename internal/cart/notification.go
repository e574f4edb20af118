package cart

import "github.com/mmeshcher/vinayak-store/internal/model"

// Outcome описывает исход операции над корзиной.
type Outcome string

const (
	OutcomeAdded           Outcome = "added"
	OutcomeQuantityUpdated Outcome = "quantity_updated"
	OutcomeQuantitySet     Outcome = "quantity_set"
	OutcomeRemoved         Outcome = "removed"
	OutcomeCleared         Outcome = "cleared"
	OutcomeUnchanged       Outcome = "unchanged"
	OutcomeRejected        Outcome = "rejected"
	OutcomeAmbiguous       Outcome = "ambiguous"
)

// Notification описывает результат операции для показа покупателю.
type Notification struct {
	Outcome Outcome      `json:"outcome"`
	LineID  model.LineID `json:"lineId,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Changed сообщает, изменила ли операция содержимое корзины.
func (n Notification) Changed() bool {
	switch n.Outcome {
	case OutcomeAdded, OutcomeQuantityUpdated, OutcomeQuantitySet, OutcomeRemoved, OutcomeCleared:
		return true
	default:
		return false
	}
}
