package render

import (
	"html/template"
	"io"

	"github.com/drstein77/eshop/internal/models"
)

// Page is everything the storefront page shows.
type Page struct {
	Query      string
	Products   []models.Product
	Cart       models.CartView
	DrawerOpen bool
	Reviewing  bool
	// Summary is the cart as it was when the checkout was opened.
	Summary   models.CartView
	LastOrder *models.Order
	Notices   []models.Notice
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"price": FormatPrice,
}).Parse(`<!doctype html>
<html lang="fr">
<head><meta charset="utf-8"><title>Boutique</title></head>
<body>
<header>
  <form method="get" action="/"><input id="search" type="search" name="q" value="{{.Query}}" placeholder="Rechercher"></form>
  <form method="post" action="/actions"><input type="hidden" name="action" value="toggle_cart">
    <button id="cart-btn">Panier (<span id="cart-count">{{.Cart.Count}}</span>)</button></form>
</header>
{{range .Notices}}<div class="notice {{.Kind}}" role="{{if eq .Kind "alert"}}alert{{else}}status{{end}}">{{.Message}}</div>
{{end}}
<main id="products">
{{range .Products}}  <article class="card">
    <img src="{{.Image}}" alt="{{.Title}}">
    <h3>{{.Title}}</h3>
    <p>{{.Description}}</p>
    <div class="price">{{price .Price}}</div>
    <form method="post" action="/actions"><input type="hidden" name="id" value="{{.ID}}">
      <button class="btn" name="action" value="quick">Voir</button>
      <button class="btn primary" name="action" value="add">Ajouter</button></form>
  </article>
{{else}}  <p>Aucun produit trouvé.</p>
{{end}}</main>
{{if .DrawerOpen}}<aside id="cart-drawer">
{{range .Cart.Lines}}  <div class="cart-item">
    <img src="{{.Product.Image}}" alt="{{.Product.Title}}">
    <div class="meta"><strong>{{.Product.Title}}</strong> <span>{{price .Product.Price}} x {{.Quantity}}</span>
      <form method="post" action="/actions"><input type="hidden" name="id" value="{{.Product.ID}}">
        <button class="btn" name="action" value="dec">−</button><span>{{.Quantity}}</span>
        <button class="btn" name="action" value="inc">+</button>
        <button class="btn" name="action" value="del">Supprimer</button></form></div>
  </div>
{{else}}  <p>Ton panier est vide.</p>
{{end}}  <div id="subtotal">{{.Cart.Display}}</div>
  <form method="post" action="/actions">
    <button id="clear-cart" name="action" value="clear">Vider</button>
    <button id="go-checkout" name="action" value="checkout">Commander</button>
    <button id="close-cart" name="action" value="close_cart">Fermer</button></form>
</aside>
{{end}}{{if .Reviewing}}<section id="checkout">
  <div id="order-summary"><h3>Récapitulatif</h3>
{{range .Summary.Lines}}    <div>{{.Product.Title}} × {{.Quantity}} <span>{{price .Total}}</span></div>
{{end}}    <hr><div>Total: {{.Summary.Display}}</div></div>
  <form id="checkout-form" method="post" action="/actions">
    <input name="name" placeholder="Nom"><input name="email" type="email" placeholder="Email">
    <button name="action" value="submit">Confirmer</button>
    <button id="cancel-checkout" name="action" value="cancel">Annuler</button></form>
</section>
{{end}}{{with .LastOrder}}<section id="last-order">
  <p>Commande {{.ID}} confirmée pour {{.Name}} — {{price .Total}}</p>
{{range .Lines}}  <div>{{.Product.Title}} × {{.Quantity}}</div>
{{end}}</section>
{{end}}</body>
</html>
`))

// HTML writes the page.
func HTML(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
