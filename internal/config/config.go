package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Options struct {
	runAddr        string
	logLevel       string
	dataBaseDSN    string
	catalogSource  string
	cartKey        string
	migrationsPath string
	catalogTimeout time.Duration
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	loadEnvFile()

	o.register(flag.CommandLine)
	flag.Parse()
}

// register binds the options to fs. Env values act as flag defaults.
func (o *Options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "debug"), "log level")
	fs.StringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string")
	fs.StringVar(&o.catalogSource, "c", getEnvOrDefault("CATALOG_SOURCE", "products.json"), "catalog URL or file path")
	fs.StringVar(&o.cartKey, "k", getEnvOrDefault("CART_KEY", "cart_v1"), "storage key of the cart")
	fs.StringVar(&o.migrationsPath, "m", getEnvOrDefault("MIGRATIONS_PATH", "migrations"), "migrations directory")
	fs.DurationVar(&o.catalogTimeout, "t", getDurationOrDefault("CATALOG_TIMEOUT", 10*time.Second), "catalog fetch timeout")
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) CatalogSource() string {
	return o.catalogSource
}

func (o *Options) CartKey() string {
	return o.cartKey
}

func (o *Options) MigrationsPath() string {
	return o.migrationsPath
}

func (o *Options) CatalogTimeout() time.Duration {
	return o.catalogTimeout
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// loadEnvFile loads environment variables from a .env file in the working directory.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	envPath := filepath.Join(cwd, ".env")

	err = godotenv.Load(envPath)
	if err != nil {
		log.Printf("No .env file found at %s, proceeding without it", envPath)
	} else {
		log.Printf(".env file loaded from %s", envPath)
	}
}

// ParseArgs parses args on a fresh flag set, without touching the process
// command line.
func (o *Options) ParseArgs(args []string) error {
	fs := flag.NewFlagSet("eshop", flag.ContinueOnError)
	o.register(fs)
	return fs.Parse(args)
}
