package shop

import (
	"errors"
	"fmt"

	"github.com/drstein77/eshop/internal/checkout"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingProduct = errors.New("command needs a product id")
)

// Kind tags a Command. The string values are the action names used by the
// page forms and the JSON API.
type Kind string

const (
	CmdAdd            Kind = "add"
	CmdIncrement      Kind = "inc"
	CmdDecrement      Kind = "dec"
	CmdRemove         Kind = "del"
	CmdClear          Kind = "clear"
	CmdQuickView      Kind = "quick"
	CmdToggleCart     Kind = "toggle_cart"
	CmdCloseCart      Kind = "close_cart"
	CmdOpenCheckout   Kind = "checkout"
	CmdCancelCheckout Kind = "cancel"
	CmdSubmitCheckout Kind = "submit"
)

var kinds = map[Kind]bool{
	CmdAdd: true, CmdIncrement: true, CmdDecrement: true, CmdRemove: true,
	CmdClear: true, CmdQuickView: true, CmdToggleCart: true, CmdCloseCart: true,
	CmdOpenCheckout: true, CmdCancelCheckout: true, CmdSubmitCheckout: true,
}

// ParseKind validates an action name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !kinds[k] {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownCommand)
	}
	return k, nil
}

// Command is one user action. ProductID is read by the product actions,
// Quantity by CmdAdd (zero means one) and Contact by CmdSubmitCheckout.
type Command struct {
	Kind      Kind             `json:"action"`
	ProductID string           `json:"id,omitempty"`
	Quantity  int              `json:"qty,omitempty"`
	Contact   checkout.Contact `json:"contact"`
}

func (c Command) needsProduct() bool {
	switch c.Kind {
	case CmdAdd, CmdIncrement, CmdDecrement, CmdRemove, CmdQuickView:
		return true
	}
	return false
}

func Add(id string, qty int) Command { return Command{Kind: CmdAdd, ProductID: id, Quantity: qty} }
func Increment(id string) Command    { return Command{Kind: CmdIncrement, ProductID: id} }
func Decrement(id string) Command    { return Command{Kind: CmdDecrement, ProductID: id} }
func Remove(id string) Command       { return Command{Kind: CmdRemove, ProductID: id} }
func Clear() Command                 { return Command{Kind: CmdClear} }

func Submit(name, email string) Command {
	return Command{Kind: CmdSubmitCheckout, Contact: checkout.Contact{Name: name, Email: email}}
}
