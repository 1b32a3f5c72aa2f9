package config

type Redis struct {
	Addr     string `env:"REDIS_ADDR,required,notEmpty"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Key is the hash holding every product document.
	Key string `env:"REDIS_KEY" envDefault:"products"`
}
