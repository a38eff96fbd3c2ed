package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/drstein77/eshop/internal/compress"
	"github.com/drstein77/eshop/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Log interface {
	Debug(string, ...zap.Field)
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Loader fetches the catalog from an HTTP(S) URL or a local file.
type Loader struct {
	source string
	client *http.Client
	log    Log
}

func NewLoader(source string, timeout time.Duration, log Log) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Load fetches and decodes the catalog once. There is no retry.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	body, name, err := l.open(ctx)
	if err != nil {
		l.log.Error("Failed to fetch catalog", zap.String("source", l.source), zap.Error(err))
		return nil, err
	}

	if kind := compress.Kind(name); kind != "" {
		entry, err := compress.Open(kind, body, isCatalogFile)
		if err != nil {
			l.log.Error("Failed to open catalog archive", zap.String("source", l.source), zap.Error(err))
			return nil, fmt.Errorf("open archive %s: %w", name, err)
		}
		body, name = entry, entry.Name()
	}
	defer body.Close()

	products, err := Decode(name, body)
	if err != nil {
		l.log.Error("Failed to decode catalog", zap.String("source", l.source), zap.Error(err))
		return nil, err
	}

	c, err := New(products)
	if err != nil {
		l.log.Error("Invalid catalog", zap.String("source", l.source), zap.Error(err))
		return nil, err
	}

	l.log.Info("Catalog loaded", zap.String("source", l.source), zap.Int("count", c.Len()))
	return c, nil
}

// open returns the raw body and the name used for format detection.
func (l *Loader) open(ctx context.Context) (io.ReadCloser, string, error) {
	l.log.Debug("Fetching catalog", zap.String("source", l.source))

	u, err := url.Parse(l.source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetch catalog: %w", err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			resp.Body.Close()
			return nil, "", fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
		}
		return resp.Body, u.Path, nil
	}

	f, err := os.Open(l.source)
	if err != nil {
		return nil, "", fmt.Errorf("open catalog: %w", err)
	}
	return f, l.source, nil
}

func isCatalogFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses a product list. YAML is chosen by a .yaml or .yml name,
// JSON otherwise.
func Decode(name string, r io.Reader) ([]models.Product, error) {
	var products []models.Product

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&products); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&products); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	}

	return products, nil
}
