package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/drstein77/eshop/internal/cart"
	"github.com/drstein77/eshop/internal/catalog"
	"github.com/drstein77/eshop/internal/checkout"
	"github.com/drstein77/eshop/internal/config"
	"github.com/drstein77/eshop/internal/controllers"
	"github.com/drstein77/eshop/internal/dbkeeper"
	"github.com/drstein77/eshop/internal/logger"
	"github.com/drstein77/eshop/internal/shop"
	"github.com/drstein77/eshop/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 5 * time.Second

type Server struct {
	Log *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	option *config.Options

	mx              sync.Mutex
	shutdownTimeout time.Duration
}

// NewServer parses the options and builds the logger.
func NewServer(ctx context.Context) (*Server, error) {
	option := config.NewOptions()
	option.ParseFlags()

	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	return newServer(ctx, option, nLogger), nil
}

func newServer(ctx context.Context, option *config.Options, log *logger.Logger) *Server {
	ctx, cancel := context.WithCancel(ctx)
	return &Server{
		Log:             log,
		ctx:             ctx,
		cancel:          cancel,
		option:          option,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// Serve wires storage, cart, checkout and routes, then runs the HTTP server
// while the catalog loads in the background. It returns once the server has
// stopped, which happens when the context is cancelled or Shutdown is called.
func (server *Server) Serve() error {
	if server.ctx.Err() != nil {
		return nil
	}
	option := server.option

	var keeper storage.Keeper
	if kp := dbkeeper.NewDBKeeper(server.ctx, option.DataBaseDSN, option.MigrationsPath(), server.Log); kp != nil {
		keeper = kp
	} else {
		server.Log.Info("using in-memory storage only")
	}
	st := storage.NewMemoryStorage(keeper, server.Log)
	defer st.Close()

	if server.ctx.Err() != nil {
		return nil
	}

	store := cart.NewStore(server.ctx, st, option.CartKey(), server.Log)
	sh := shop.New(store, checkout.NewFlow(), server.Log.With(zap.String("component", "shop")))
	loader := catalog.NewLoader(option.CatalogSource(), option.CatalogTimeout(), server.Log.With(zap.String("component", "catalog")))

	srv := &http.Server{
		Addr:              option.RunAddr(),
		Handler:           controllers.NewBaseController(sh, st, server.Log).Route(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(server.ctx)
	g.Go(func() error {
		// a failed load leaves the catalog empty; it does not stop the server
		_ = sh.LoadCatalog(gctx, loader)
		return nil
	})
	g.Go(func() error {
		server.Log.Info("server started", zap.String("addr", option.RunAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), server.timeout())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			server.Log.Error("server shutdown failed", zap.Error(err))
			return nil
		}
		server.Log.Info("server stopped")
		return nil
	})

	err := g.Wait()
	server.Log.Sync()
	return err
}

// Shutdown stops the server, giving requests in flight up to timeout. It may
// be called before or while Serve runs.
func (server *Server) Shutdown(timeout time.Duration) {
	server.mx.Lock()
	server.shutdownTimeout = timeout
	server.mx.Unlock()

	server.cancel()
}

func (server *Server) timeout() time.Duration {
	server.mx.Lock()
	defer server.mx.Unlock()
	return server.shutdownTimeout
}
