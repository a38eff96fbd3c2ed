// Package checkout simulates placing an order. Nothing leaves the process:
// the order only lives in the confirmation.
package checkout

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/drstein77/eshop/internal/models"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingContact = errors.New("name and email are required")
	ErrNotReviewing   = errors.New("checkout is not open")
)

type State int

const (
	Idle State = iota
	Reviewing
	Confirmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reviewing:
		return "reviewing"
	case Confirmed:
		return "confirmed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Contact is the checkout form.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Flow is the Idle -> Reviewing -> Confirmed state machine.
type Flow struct {
	state   State
	summary models.CartView
	last    *models.Order

	newID func() string
	now   func() time.Time
}

type Option func(*Flow)

// WithIDGenerator replaces the order id source.
func WithIDGenerator(fn func() string) Option {
	return func(f *Flow) { f.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(f *Flow) { f.now = fn }
}

func NewFlow(opts ...Option) *Flow {
	f := &Flow{
		newID: NewOrderID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	return f.state
}

// Visible reports whether the checkout section is shown.
func (f *Flow) Visible() bool {
	return f.state == Reviewing
}

// Summary is the cart view captured when the checkout was opened.
func (f *Flow) Summary() models.CartView {
	return f.summary
}

// LastOrder returns the most recent confirmed order, if any.
func (f *Flow) LastOrder() *models.Order {
	return f.last
}

// Open moves to Reviewing with a summary of view. An empty cart is refused
// and the state is left as it was.
func (f *Flow) Open(view models.CartView) error {
	if view.Empty() {
		return ErrEmptyCart
	}
	f.summary = view
	f.state = Reviewing
	return nil
}

// Cancel hides the checkout section without touching the cart.
func (f *Flow) Cancel() {
	if f.state == Reviewing {
		f.state = Idle
	}
	f.summary = models.CartView{}
}

// Submit validates the contact and confirms the order for view. The caller
// clears the cart once the order is returned.
func (f *Flow) Submit(c Contact, view models.CartView) (models.Order, error) {
	if f.state != Reviewing {
		return models.Order{}, ErrNotReviewing
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" || c.Email == "" {
		return models.Order{}, ErrMissingContact
	}

	if view.Empty() {
		f.state = Idle
		f.summary = models.CartView{}
		return models.Order{}, ErrEmptyCart
	}

	order := models.Order{
		ID:        f.newID(),
		Name:      c.Name,
		Email:     c.Email,
		Lines:     view.Lines,
		Total:     view.Subtotal,
		CreatedAt: f.now(),
	}

	f.state = Confirmed
	f.summary = models.CartView{}
	f.last = &order

	return order, nil
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID returns "CMD" followed by seven random base-36 characters.
// The source is not cryptographic and ids are not checked for uniqueness;
// orders are never stored, so a collision has no effect.
func NewOrderID() string {
	var b strings.Builder
	b.WriteString("CMD")
	for i := 0; i < 7; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}

// ConfirmationMessage is the blocking notice shown after a confirmed order.
func ConfirmationMessage(o models.Order) string {
	return fmt.Sprintf("Merci %s !\nCommande %s confirmée.\nUn email de confirmation a été envoyé à %s (simulation).", o.Name, o.ID, o.Email)
}
