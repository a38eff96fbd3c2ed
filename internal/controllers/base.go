package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/drstein77/eshop/internal/cart"
	"github.com/drstein77/eshop/internal/middleware"
	"github.com/drstein77/eshop/internal/models"
	"github.com/drstein77/eshop/internal/render"
	"github.com/drstein77/eshop/internal/shop"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Shop is the storefront state the handlers drive.
type Shop interface {
	Dispatch(context.Context, shop.Command) (shop.Result, error)
	Notify(...models.Notice)
	Page(query string) render.Page
	Products(query string) []models.Product
	Cart() models.CartView
}

// Pinger reports storage health.
type Pinger interface {
	Ping(context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	shop    Shop
	storage Pinger
	log     Log
}

// NewBaseController creates a new BaseController instance
func NewBaseController(shop Shop, storage Pinger, log Log) *BaseController {
	return &BaseController{
		shop:    shop,
		storage: storage,
		log:     log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(h.log))
	r.Use(chimw.Compress(5, "text/html", "application/json"))

	r.Get("/", h.getPage)
	r.Post("/actions", h.postAction)
	r.Get("/healthz", h.getHealth)

	r.Route("/api/v0", func(r chi.Router) {
		r.Get("/products", h.getProducts)
		r.Get("/cart", h.getCart)
		r.Post("/commands", h.postCommand)
	})

	return r
}

func (h *BaseController) getPage(w http.ResponseWriter, r *http.Request) {
	buf := &bytes.Buffer{}
	if err := render.HTML(buf, h.shop.Page(r.URL.Query().Get("q"))); err != nil {
		h.log.Error("Failed to render page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *BaseController) postAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form", http.StatusBadRequest)
		return
	}

	cmd := shop.Command{
		Kind:      shop.Kind(r.PostFormValue("action")),
		ProductID: r.PostFormValue("id"),
	}
	cmd.Contact.Name = r.PostFormValue("name")
	cmd.Contact.Email = r.PostFormValue("email")
	if raw := r.PostFormValue("qty"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Malformed quantity", http.StatusBadRequest)
			return
		}
		cmd.Quantity = qty
	}

	res, ok := h.dispatch(w, r, cmd)
	if !ok {
		return
	}
	h.shop.Notify(res.Notices...)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BaseController) postCommand(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cmd shop.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Malformed command", http.StatusBadRequest)
		return
	}

	res, ok := h.dispatch(w, r, cmd)
	if !ok {
		return
	}
	writeJSON(w, res)
}

// dispatch runs cmd and writes the error response when it fails.
func (h *BaseController) dispatch(w http.ResponseWriter, r *http.Request, cmd shop.Command) (shop.Result, bool) {
	res, err := h.shop.Dispatch(r.Context(), cmd)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, shop.ErrUnknownCommand),
		errors.Is(err, shop.ErrMissingProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrEmptyProductID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("Failed to apply command", zap.String("action", string(cmd.Kind)), zap.Error(err))
		http.Error(w, "Failed to apply command", http.StatusInternalServerError)
	}
	return shop.Result{}, false
}

func (h *BaseController) getProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.shop.Products(r.URL.Query().Get("q")))
}

func (h *BaseController) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.shop.Cart())
}

func (h *BaseController) getHealth(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
