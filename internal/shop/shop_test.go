package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/drstein77/eshop/internal/cart"
	"github.com/drstein77/eshop/internal/catalog"
	"github.com/drstein77/eshop/internal/checkout"
	"github.com/drstein77/eshop/internal/logger"
	"github.com/drstein77/eshop/internal/models"
	"github.com/drstein77/eshop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticLoader struct {
	c   *catalog.Catalog
	err error
}

func (l staticLoader) Load(context.Context) (*catalog.Catalog, error) {
	return l.c, l.err
}

func exampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]models.Product{
		{ID: "p1", Title: "A", Price: decimal.RequireFromString("10.00")},
		{ID: "p2", Title: "B", Price: decimal.RequireFromString("5.50")},
	})
	require.NoError(t, err)
	return c
}

func newShop(t *testing.T) (*Shop, *storage.MemoryStorage) {
	t.Helper()
	ctx := context.Background()
	st := storage.NewMemoryStorage(nil, logger.Nop())
	store := cart.NewStore(ctx, st, "cart_v1", logger.Nop())
	flow := checkout.NewFlow(checkout.WithIDGenerator(func() string { return "CMDTEST001" }))
	s := New(store, flow, logger.Nop())
	require.NoError(t, s.LoadCatalog(ctx, staticLoader{c: exampleCatalog(t)}))
	return s, st
}

func dispatch(t *testing.T, s *Shop, cmd Command) Result {
	t.Helper()
	res, err := s.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	return res
}

func messages(ns []models.Notice) []string {
	out := []string{}
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func TestExampleScenario(t *testing.T) {
	s, st := newShop(t)

	res := dispatch(t, s, Add("p1", 2))
	assert.Equal(t, []string{"Ajouté au panier"}, messages(res.Notices))

	res = dispatch(t, s, Add("p2", 1))
	assert.Equal(t, "25,50 €", res.Cart.Display)
	assert.Equal(t, 3, res.Cart.Count)

	res = dispatch(t, s, Decrement("p1"))
	assert.Equal(t, "15,50 €", res.Cart.Display)

	dispatch(t, s, Command{Kind: CmdOpenCheckout})
	assert.Equal(t, checkout.Reviewing, s.CheckoutState())

	res = dispatch(t, s, Submit("Ana", "ana@example.com"))
	require.NotNil(t, res.Order)
	assert.Equal(t, "CMDTEST001", res.Order.ID)
	assert.True(t, res.Order.Total.Equal(decimal.RequireFromString("15.50")))
	assert.True(t, res.Cart.Empty())
	assert.Equal(t, "0,00 €", res.Cart.Display)
	require.Len(t, res.Notices, 2)
	assert.Equal(t, models.NoticeToast, res.Notices[0].Kind)
	assert.Equal(t, "Commande confirmée — CMDTEST001", res.Notices[0].Message)
	assert.Equal(t, models.NoticeAlert, res.Notices[1].Kind)
	assert.Contains(t, res.Notices[1].Message, "ana@example.com")
	assert.Equal(t, checkout.Confirmed, s.CheckoutState())

	raw, err := st.Get(context.Background(), "cart_v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestCheckoutRefusedOnEmptyCart(t *testing.T) {
	s, _ := newShop(t)

	res := dispatch(t, s, Command{Kind: CmdOpenCheckout})
	require.Len(t, res.Notices, 1)
	assert.Equal(t, models.NoticeAlert, res.Notices[0].Kind)
	assert.Equal(t, "Votre panier est vide.", res.Notices[0].Message)
	assert.Equal(t, checkout.Idle, s.CheckoutState())
}

func TestCheckoutRefusedOnBlankFields(t *testing.T) {
	s, _ := newShop(t)
	dispatch(t, s, Add("p1", 1))
	dispatch(t, s, Command{Kind: CmdOpenCheckout})

	res := dispatch(t, s, Submit("Ana", " "))
	assert.Equal(t, []string{"Remplis les champs requis"}, messages(res.Notices))
	assert.Nil(t, res.Order)
	assert.Equal(t, checkout.Reviewing, s.CheckoutState())
	assert.Equal(t, 1, res.Cart.Count)
}

func TestSubmitWithoutOpening(t *testing.T) {
	s, _ := newShop(t)
	dispatch(t, s, Add("p1", 1))

	res := dispatch(t, s, Submit("Ana", "ana@example.com"))
	assert.Nil(t, res.Order)
	assert.Equal(t, 1, res.Cart.Count)
}

func TestCancelCheckoutKeepsCart(t *testing.T) {
	s, _ := newShop(t)
	dispatch(t, s, Add("p1", 1))
	dispatch(t, s, Command{Kind: CmdOpenCheckout})

	res := dispatch(t, s, Command{Kind: CmdCancelCheckout})
	assert.Equal(t, checkout.Idle, s.CheckoutState())
	assert.Equal(t, 1, res.Cart.Count)
}

func TestDrawer(t *testing.T) {
	s, _ := newShop(t)

	dispatch(t, s, Command{Kind: CmdToggleCart})
	assert.True(t, s.Page("").DrawerOpen)
	dispatch(t, s, Command{Kind: CmdToggleCart})
	assert.False(t, s.Page("").DrawerOpen)

	dispatch(t, s, Command{Kind: CmdToggleCart})
	dispatch(t, s, Command{Kind: CmdCloseCart})
	assert.False(t, s.Page("").DrawerOpen)

	// opening the checkout hides the drawer
	dispatch(t, s, Add("p1", 1))
	dispatch(t, s, Command{Kind: CmdToggleCart})
	dispatch(t, s, Command{Kind: CmdOpenCheckout})
	p := s.Page("")
	assert.False(t, p.DrawerOpen)
	assert.True(t, p.Reviewing)
}

func TestQuickView(t *testing.T) {
	s, _ := newShop(t)
	res := dispatch(t, s, Command{Kind: CmdQuickView, ProductID: "p1"})
	assert.Equal(t, []string{"Fonction \"Voir\" non-implémentée — future mise à jour"}, messages(res.Notices))
}

func TestRemoveAndClear(t *testing.T) {
	s, _ := newShop(t)
	dispatch(t, s, Add("p1", 1))
	dispatch(t, s, Add("p2", 3))

	res := dispatch(t, s, Remove("p2"))
	assert.Equal(t, 1, res.Cart.Count)

	dispatch(t, s, Increment("p1"))
	res = dispatch(t, s, Clear())
	assert.True(t, res.Cart.Empty())
	assert.True(t, res.Cart.Subtotal.IsZero())
}

func TestDispatchErrors(t *testing.T) {
	s, _ := newShop(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Command{Kind: "explode"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = s.Dispatch(ctx, Command{Kind: CmdAdd})
	assert.ErrorIs(t, err, ErrMissingProduct)

	_, err = s.Dispatch(ctx, Add("p1", -1))
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestCatalogFailure(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage(nil, logger.Nop())
	require.NoError(t, st.Put(ctx, "cart_v1", []byte(`{"p1":2}`)))

	s := New(cart.NewStore(ctx, st, "cart_v1", logger.Nop()), checkout.NewFlow(), logger.Nop())
	err := s.LoadCatalog(ctx, staticLoader{err: errors.New("offline")})
	assert.Error(t, err)

	p := s.Page("")
	assert.Empty(t, p.Products)
	assert.True(t, p.Cart.Empty(), "restored entries are skipped without a catalog")
	assert.Equal(t, 2, p.Cart.Count)
	assert.Equal(t, []string{"Impossible de charger les produits."}, messages(p.Notices))

	// notices are shown once
	assert.Empty(t, s.Page("").Notices)
}

func TestSearch(t *testing.T) {
	s, _ := newShop(t)
	assert.Len(t, s.Products(""), 2)
	assert.Len(t, s.Products("a"), 1)
	assert.Empty(t, s.Products("zzz"))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("inc")
	require.NoError(t, err)
	assert.Equal(t, CmdIncrement, k)

	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestPageShowsCheckoutSummaryAndLastOrder(t *testing.T) {
	s, _ := newShop(t)
	dispatch(t, s, Add("p1", 2))
	dispatch(t, s, Command{Kind: CmdOpenCheckout})

	// the summary is the cart at opening time
	dispatch(t, s, Add("p2", 1))
	p := s.Page("")
	assert.True(t, p.Reviewing)
	assert.Equal(t, "20,00 €", p.Summary.Display)
	assert.Equal(t, "25,50 €", p.Cart.Display)
	assert.Nil(t, p.LastOrder)

	dispatch(t, s, Submit("Ana", "ana@example.com"))
	p = s.Page("")
	assert.False(t, p.Reviewing)
	assert.True(t, p.Summary.Empty())
	require.NotNil(t, p.LastOrder)
	assert.Equal(t, "CMDTEST001", p.LastOrder.ID)
	assert.Len(t, p.LastOrder.Lines, 2)
}

func TestCatalogFailureIsNotLoggedByShop(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := context.Background()
	st := storage.NewMemoryStorage(nil, logger.Nop())
	s := New(cart.NewStore(ctx, st, "cart_v1", logger.Nop()), checkout.NewFlow(), zap.New(core))

	require.Error(t, s.LoadCatalog(ctx, staticLoader{err: errors.New("offline")}))
	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}
