package models

import (
	"strings"
	"time"
)

type Product struct {
	ID          int64  `json:"product_id" db:"product_id"`
	Name        string `json:"name" db:"name"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
}

// CombinedText joins the text fields used by the content model.
func (p Product) CombinedText() string {
	return strings.Join([]string{p.Name, p.Category, p.Description}, " ")
}

type InteractionType string

const (
	InteractionView      InteractionType = "view"
	InteractionAddToCart InteractionType = "add_to_cart"
	InteractionPurchase  InteractionType = "purchase"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionAddToCart, InteractionPurchase:
		return true
	}
	return false
}

type InteractionEvent struct {
	UserID    int64           `json:"user_id" db:"user_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Type      InteractionType `json:"interaction_type" db:"interaction_type" validate:"required,oneof=view add_to_cart purchase"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}
