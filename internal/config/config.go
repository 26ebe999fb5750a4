package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string `env:"PORT" env-default:"8080"`
	DBDSN        string `env:"DB_DSN" env-default:"storefront.db"` // sqlite file in project root
	TemplatesDir string `env:"TEMPLATES_DIR" env-default:"./web/templates"`
	StaticDir    string `env:"STATIC_DIR" env-default:"./web/static"`
	MediaDir     string `env:"MEDIA_DIR" env-default:"./web/media"`

	// Empty LogFile keeps logs on stdout only.
	LogFile       string `env:"LOG_FILE" env-default:"./storefront.log"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"20"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"28"`

	// Requests per minute per client IP, and login attempts per 10 minutes.
	RateLimit  int `env:"RATE_LIMIT" env-default:"120"`
	LoginLimit int `env:"LOGIN_LIMIT" env-default:"5"`

	CookieSecure   bool `env:"COOKIE_SECURE" env-default:"false"` // set true behind HTTPS
	TemplateReload bool `env:"TEMPLATE_RELOAD" env-default:"false"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using process environment only")
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DSN=%s TEMPLATES_DIR=%s MEDIA_DIR=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.TemplatesDir, cfg.MediaDir, cfg.LogFile)
	return cfg, nil
}
