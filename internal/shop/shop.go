// Package shop holds the application state of the storefront and applies
// user commands to it one at a time.
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drstein77/eshop/internal/cart"
	"github.com/drstein77/eshop/internal/catalog"
	"github.com/drstein77/eshop/internal/checkout"
	"github.com/drstein77/eshop/internal/models"
	"github.com/drstein77/eshop/internal/render"
	"go.uber.org/zap"
)

const (
	msgAdded         = "Ajouté au panier"
	msgCatalogFailed = "Impossible de charger les produits."
	msgQuickView     = "Fonction \"Voir\" non-implémentée — future mise à jour"
	msgEmptyCart     = "Votre panier est vide."
	msgMissingFields = "Remplis les champs requis"
	msgNoCheckout    = "Aucune commande en cours."
	msgSaveFailed    = "Impossible d'enregistrer le panier."

	confirmationToast = 4 * time.Second
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// CatalogLoader fetches the catalog once.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Result is what a command produced.
type Result struct {
	Notices []models.Notice `json:"notices"`
	Cart    models.CartView `json:"cart"`
	Order   *models.Order   `json:"order,omitempty"`
}

// Shop is the whole mutable state of the storefront. All access goes
// through one lock, so commands apply in order and never interleave.
type Shop struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	cart     *cart.Store
	checkout *checkout.Flow

	drawerOpen bool
	pending    []models.Notice

	log Log
}

func New(store *cart.Store, flow *checkout.Flow, log Log) *Shop {
	return &Shop{
		catalog:  catalog.Empty(),
		cart:     store,
		checkout: flow,
		log:      log,
	}
}

// LoadCatalog runs the loader and installs its catalog. On failure the
// catalog stays empty and a notice is queued for the next page; logging the
// cause is the loader's job.
func (s *Shop) LoadCatalog(ctx context.Context, loader CatalogLoader) error {
	c, err := loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.pending = append(s.pending, models.Toast(msgCatalogFailed))
		return err
	}
	s.catalog = c
	return nil
}

// Dispatch applies cmd. Refusals (empty cart, missing contact fields) are
// reported as notices, not errors.
func (s *Shop) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if _, err := ParseKind(string(cmd.Kind)); err != nil {
		return Result{}, err
	}
	if cmd.needsProduct() && cmd.ProductID == "" {
		return Result{}, fmt.Errorf("%s: %w", cmd.Kind, ErrMissingProduct)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result
	notify := func(n models.Notice) { res.Notices = append(res.Notices, n) }
	saved := func(err error) {
		if err != nil {
			s.log.Error("cart mutation not persisted", zap.String("action", string(cmd.Kind)), zap.Error(err))
			notify(models.Toast(msgSaveFailed))
		}
	}

	switch cmd.Kind {
	case CmdAdd:
		qty := cmd.Quantity
		if qty == 0 {
			qty = 1
		}
		err := s.cart.Add(ctx, cmd.ProductID, qty)
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return Result{}, err
		}
		saved(err)
		notify(models.Toast(msgAdded))
	case CmdIncrement:
		saved(s.cart.Increment(ctx, cmd.ProductID))
	case CmdDecrement:
		saved(s.cart.Decrement(ctx, cmd.ProductID))
	case CmdRemove:
		saved(s.cart.Remove(ctx, cmd.ProductID))
	case CmdClear:
		saved(s.cart.Clear(ctx))
	case CmdQuickView:
		notify(models.Toast(msgQuickView))
	case CmdToggleCart:
		s.drawerOpen = !s.drawerOpen
	case CmdCloseCart:
		s.drawerOpen = false
	case CmdOpenCheckout:
		s.drawerOpen = false
		if err := s.checkout.Open(s.cartView()); err != nil {
			notify(models.Alert(msgEmptyCart))
		}
	case CmdCancelCheckout:
		s.checkout.Cancel()
	case CmdSubmitCheckout:
		order, err := s.checkout.Submit(cmd.Contact, s.cartView())
		switch {
		case errors.Is(err, checkout.ErrMissingContact):
			notify(models.Toast(msgMissingFields))
		case errors.Is(err, checkout.ErrEmptyCart):
			notify(models.Alert(msgEmptyCart))
		case errors.Is(err, checkout.ErrNotReviewing):
			notify(models.Toast(msgNoCheckout))
		case err == nil:
			saved(s.cart.Clear(ctx))
			s.log.Info("order confirmed (simulated)",
				zap.String("order_id", order.ID),
				zap.String("total", order.Total.StringFixed(2)),
				zap.Int("lines", len(order.Lines)))
			notify(models.Notice{Kind: models.NoticeToast, Message: "Commande confirmée — " + order.ID, Duration: confirmationToast})
			notify(models.Alert(checkout.ConfirmationMessage(order)))
			res.Order = &order
		}
	}

	res.Cart = s.cartView()
	return res, nil
}

// Notify queues notices for the next page render.
func (s *Shop) Notify(notices ...models.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, notices...)
}

// Page builds the page for query and drains the queued notices.
func (s *Shop) Page(query string) render.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := render.Page{
		Query:      query,
		Products:   render.FilterProducts(s.catalog, query),
		Cart:       s.cartView(),
		DrawerOpen: s.drawerOpen,
		Reviewing:  s.checkout.Visible(),
		Summary:    s.checkout.Summary(),
		LastOrder:  s.checkout.LastOrder(),
		Notices:    s.pending,
	}
	s.pending = nil
	return p
}

// Products returns the catalog filtered by query.
func (s *Shop) Products(query string) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.FilterProducts(s.catalog, query)
}

// Cart returns the current cart view.
func (s *Shop) Cart() models.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

// CheckoutState returns the state of the checkout flow.
func (s *Shop) CheckoutState() checkout.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.State()
}

func (s *Shop) cartView() models.CartView {
	return render.BuildCartView(s.catalog, s.cart.Snapshot())
}
