package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. It is never modified after loading.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Image       string          `json:"image" yaml:"image"`
}

// Cart maps a product id to a positive quantity.
type Cart map[string]int

// CartLine is a cart entry joined with its catalog product.
type CartLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// CartView is the rendered state of the cart.
type CartView struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Display  string          `json:"subtotal_display"`
	Count    int             `json:"count"`
}

// Empty reports whether the view has no renderable lines.
func (v CartView) Empty() bool {
	return len(v.Lines) == 0
}

// Order is a simulated order. It lives only as long as the confirmation.
type Order struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type NoticeKind string

const (
	NoticeToast NoticeKind = "toast"
	NoticeAlert NoticeKind = "alert"
)

// DefaultToastDuration is how long a toast stays visible unless told otherwise.
const DefaultToastDuration = 2 * time.Second

// Notice is a message for the user: toasts disappear, alerts block.
type Notice struct {
	Kind     NoticeKind    `json:"kind"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration,omitempty"`
}

func Toast(msg string) Notice {
	return Notice{Kind: NoticeToast, Message: msg, Duration: DefaultToastDuration}
}

func Alert(msg string) Notice {
	return Notice{Kind: NoticeAlert, Message: msg}
}
