package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NSQ      NSQConfig
	JWT      JWTConfig
	Pricing  PricingConfig
	Dispatch DispatchConfig
	Payment  PaymentConfig
	Logger   LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig contains NSQ daemon/lookupd addresses
type NSQConfig struct {
	NSQDAddress      string
	LookupdAddresses []string
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// PricingConfig drives the fare calculator. Defaults: base fare 5,
// 2 per km, 30 km/h average speed, KWD.
type PricingConfig struct {
	BaseFare        float64 `json:"base_fare"`
	PerKmRate       float64 `json:"per_km_rate"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
	Currency        string  `json:"currency"`
}

// DispatchConfig contains candidate-search tunables
type DispatchConfig struct {
	SearchRadiusKm float64 `json:"search_radius_km"` // radius for nearest-driver search
	MaxCandidates  int     `json:"max_candidates"`   // cap on offers fanned out per request
}

// PaymentConfig contains payment gateway configuration
type PaymentConfig struct {
	StripeAPIKey   string
	TimeoutSeconds int
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level string
	Debug bool
}
