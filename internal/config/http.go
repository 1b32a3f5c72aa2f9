package config

import "time"

type HTTP struct {
	Port             uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger          bool   `env:"HTTP_SWAGGER" envDefault:"true"`
	ValidateRequests bool   `env:"HTTP_VALIDATE_REQUESTS" envDefault:"true"`

	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// ProductEventsInterval is the tick period of the product event stream.
	ProductEventsInterval time.Duration `env:"HTTP_PRODUCT_EVENTS_INTERVAL" envDefault:"1s"`
}
