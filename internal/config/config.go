package config

import (
	"log"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Sheet     SheetConfig
	Session   SessionConfig
	JWT       JWTConfig
	Reception ReceptionConfig
	Store     StoreConfig
	Printer   PrinterConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	Location string
}

// SheetConfig points at the spreadsheet web app and bounds calls to it.
type SheetConfig struct {
	URL                string
	WriteTimeout       time.Duration
	ReadTimeout        time.Duration
	LookupTimeout      time.Duration
	LogTimeout         time.Duration
	CacheTTL           time.Duration
	SaleItemsCacheSize int
	SaleItemsCacheTTL  time.Duration
	RefreshSpec        string
}

type SessionConfig struct {
	Path string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// ReceptionConfig tunes the checkout terminal.
type ReceptionConfig struct {
	OrderNumberBase     int64
	DefaultTax          float64
	ScanGap             time.Duration
	ScanIdle            time.Duration
	ScanMinLength       int
	PrintTimeout        time.Duration
	PrintSweepSpec      string
	PersistWorkers      int
	RecentTransactions  int
	ShutdownGracePeriod time.Duration
}

// StoreConfig is the header printed on every receipt.
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
	NTN     string
	STRN    string
	Terms   string
}

type PrinterConfig struct {
	Type         string
	USBPath      string
	Address      string
	SpoolDir     string
	FallbackType string
	CharWidth    int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows the locally served till pages.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://localhost:5500",
		},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Origin",
			"X-Request-ID",
			"Idempotency-Key",
		},
	}
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LoggerConfig struct {
	Mode       string
	FileEnable bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "mirmart-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_LOCATION", "Asia/Karachi")
	viper.SetDefault("SHEET_API_URL", "")
	viper.SetDefault("SHEET_WRITE_TIMEOUT", "20s")
	viper.SetDefault("SHEET_READ_TIMEOUT", "15s")
	viper.SetDefault("SHEET_LOOKUP_TIMEOUT", "10s")
	viper.SetDefault("SHEET_LOG_TIMEOUT", "5s")
	viper.SetDefault("SHEET_CACHE_TTL", "30s")
	viper.SetDefault("SHEET_SALE_ITEMS_CACHE_SIZE", 256)
	viper.SetDefault("SHEET_SALE_ITEMS_CACHE_TTL", "10m")
	viper.SetDefault("SHEET_REFRESH_SPEC", "@every 5m")
	viper.SetDefault("SESSION_PATH", "./storage/session.db")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("RECEPTION_ORDER_BASE", int64(50000000000))
	viper.SetDefault("RECEPTION_DEFAULT_TAX", 1)
	viper.SetDefault("RECEPTION_SCAN_GAP", "200ms")
	viper.SetDefault("RECEPTION_SCAN_IDLE", "100ms")
	viper.SetDefault("RECEPTION_SCAN_MIN_LENGTH", 8)
	viper.SetDefault("RECEPTION_PRINT_TIMEOUT", "20s")
	viper.SetDefault("RECEPTION_PRINT_SWEEP_SPEC", "@every 5s")
	viper.SetDefault("RECEPTION_PERSIST_WORKERS", 4)
	viper.SetDefault("RECEPTION_RECENT_TRANSACTIONS", 10)
	viper.SetDefault("RECEPTION_SHUTDOWN_GRACE", "30s")
	viper.SetDefault("STORE_NAME", "HAFSA PHARMACY & MIR MART")
	viper.SetDefault("STORE_ADDRESS", "Bufferzone, North Nazimbad, Karachi")
	viper.SetDefault("STORE_PHONE", "03218202579")
	viper.SetDefault("STORE_NTN", "4123456-7")
	viper.SetDefault("STORE_STRN", "1234567891234")
	viper.SetDefault("STORE_TERMS", "Thanks for shopping with us. Replace & Return within 7 Days. "+
		"No Return or Exchange on Crockery, Toys, Cosmetics, Vegetable & Fruit. "+
		"Check your cash and belongings before you leave. "+
		"Management will not be responsible for any loss or theft.")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_SPOOL_DIR", "./storage/receipts")
	viper.SetDefault("PRINTER_FALLBACK_TYPE", "spool")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 48)
	cors := DefaultCORSConfig()
	viper.SetDefault("CORS_ALLOWED_ORIGINS", cors.AllowedOrigins)
	viper.SetDefault("CORS_ALLOWED_METHODS", cors.AllowedMethods)
	viper.SetDefault("CORS_ALLOWED_HEADERS", cors.AllowedHeaders)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_MODE", "development")
	viper.SetDefault("LOG_FILE_ENABLE", false)
	viper.SetDefault("LOG_FILENAME", "./storage/logs/pos.log")
	viper.SetDefault("LOG_MAX_SIZE_MB", 64)
	viper.SetDefault("LOG_MAX_BACKUPS", 7)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 7)

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			Location: viper.GetString("APP_LOCATION"),
		},
		Sheet: SheetConfig{
			URL:                viper.GetString("SHEET_API_URL"),
			WriteTimeout:       viper.GetDuration("SHEET_WRITE_TIMEOUT"),
			ReadTimeout:        viper.GetDuration("SHEET_READ_TIMEOUT"),
			LookupTimeout:      viper.GetDuration("SHEET_LOOKUP_TIMEOUT"),
			LogTimeout:         viper.GetDuration("SHEET_LOG_TIMEOUT"),
			CacheTTL:           viper.GetDuration("SHEET_CACHE_TTL"),
			SaleItemsCacheSize: viper.GetInt("SHEET_SALE_ITEMS_CACHE_SIZE"),
			SaleItemsCacheTTL:  viper.GetDuration("SHEET_SALE_ITEMS_CACHE_TTL"),
			RefreshSpec:        viper.GetString("SHEET_REFRESH_SPEC"),
		},
		Session: SessionConfig{
			Path: viper.GetString("SESSION_PATH"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Reception: ReceptionConfig{
			OrderNumberBase:     viper.GetInt64("RECEPTION_ORDER_BASE"),
			DefaultTax:          viper.GetFloat64("RECEPTION_DEFAULT_TAX"),
			ScanGap:             viper.GetDuration("RECEPTION_SCAN_GAP"),
			ScanIdle:            viper.GetDuration("RECEPTION_SCAN_IDLE"),
			ScanMinLength:       viper.GetInt("RECEPTION_SCAN_MIN_LENGTH"),
			PrintTimeout:        viper.GetDuration("RECEPTION_PRINT_TIMEOUT"),
			PrintSweepSpec:      viper.GetString("RECEPTION_PRINT_SWEEP_SPEC"),
			PersistWorkers:      viper.GetInt("RECEPTION_PERSIST_WORKERS"),
			RecentTransactions:  viper.GetInt("RECEPTION_RECENT_TRANSACTIONS"),
			ShutdownGracePeriod: viper.GetDuration("RECEPTION_SHUTDOWN_GRACE"),
		},
		Store: StoreConfig{
			Name:    viper.GetString("STORE_NAME"),
			Address: viper.GetString("STORE_ADDRESS"),
			Phone:   viper.GetString("STORE_PHONE"),
			NTN:     viper.GetString("STORE_NTN"),
			STRN:    viper.GetString("STORE_STRN"),
			Terms:   viper.GetString("STORE_TERMS"),
		},
		Printer: PrinterConfig{
			Type:         viper.GetString("PRINTER_TYPE"),
			USBPath:      viper.GetString("PRINTER_USB_PATH"),
			Address:      viper.GetString("PRINTER_ADDRESS"),
			SpoolDir:     viper.GetString("PRINTER_SPOOL_DIR"),
			FallbackType: viper.GetString("PRINTER_FALLBACK_TYPE"),
			CharWidth:    viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: stringList("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: stringList("CORS_ALLOWED_METHODS"),
			AllowedHeaders: stringList("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Logger: LoggerConfig{
			Mode:       viper.GetString("LOG_MODE"),
			FileEnable: viper.GetBool("LOG_FILE_ENABLE"),
			Filename:   viper.GetString("LOG_FILENAME"),
			MaxSizeMB:  viper.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}
}

// TaxIDs are the registration lines printed under the store address.
func (s *StoreConfig) TaxIDs() []string {
	var ids []string
	if s.NTN != "" {
		ids = append(ids, "NTN: "+s.NTN)
	}
	if s.STRN != "" {
		ids = append(ids, "STRN: "+s.STRN)
	}
	return ids
}

// stringList reads a list setting. Values from the environment arrive as one
// string separated by commas or spaces.
func stringList(key string) []string {
	if s, ok := viper.Get(key).(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	}
	return slices.Clone(cast.ToStringSlice(viper.Get(key)))
}
