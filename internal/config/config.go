package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageJournal  = "journal"
	StoragePostgres = "postgres"
)

type Config struct {
	Token          string
	ListenAddr     string
	BaseURL        string
	WebhookSecret  string
	AdminID        int64
	AdminToken     string
	Storage        string
	JournalPath    string
	DatabaseURL    string
	MigrationsPath string
	DefaultLocale  string
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{
		Token:          os.Getenv("TELEGRAM_TOKEN"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		BaseURL:        os.Getenv("BASE_URL"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		Storage:        os.Getenv("STORAGE"),
		JournalPath:    os.Getenv("JOURNAL_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DefaultLocale:  os.Getenv("DEFAULT_LOCALE"),
	}

	if raw := os.Getenv("ADMIN_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: ADMIN_ID doit être un identifiant Telegram numérique (%q)", raw)
		}
		cfg.AdminID = id
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TELEGRAM_TOKEN est requis et ne peut pas être vide")
	}

	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = ":8080"
	}

	if c.BaseURL != "" {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("config: BASE_URL invalide (%q): %w", c.BaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: BASE_URL invalide (%q): scheme ou host manquant", c.BaseURL)
		}
	}

	switch c.Storage {
	case "":
		c.Storage = StorageJournal
	case StorageJournal, StoragePostgres:
	default:
		return fmt.Errorf("config: STORAGE doit être %q ou %q (%q)", StorageJournal, StoragePostgres, c.Storage)
	}

	if c.Storage == StorageJournal && strings.TrimSpace(c.JournalPath) == "" {
		// Valeur par défaut utile en local.
		c.JournalPath = "participants.log"
	}

	if c.Storage == StoragePostgres {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL est requis quand STORAGE=%s", StoragePostgres)
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
		}
		if strings.TrimSpace(c.MigrationsPath) == "" {
			c.MigrationsPath = "migrations"
		}
	}

	if strings.TrimSpace(c.DefaultLocale) == "" {
		c.DefaultLocale = "ru"
	}

	return nil
}
