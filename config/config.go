package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY" required:"true"`

	OpenLibraryBaseURL string `envconfig:"OPENLIBRARY_BASE_URL" default:"https://openlibrary.org"`
	WikipediaBaseURL   string `envconfig:"WIKIPEDIA_BASE_URL" default:"https://en.wikipedia.org/w/api.php"`
	MusicBrainzBaseURL string `envconfig:"MUSICBRAINZ_BASE_URL" default:"https://musicbrainz.org/ws/2"`
	GitHubBaseURL      string `envconfig:"GITHUB_BASE_URL" default:"https://api.github.com"`
	GitHubToken        string `envconfig:"GITHUB_TOKEN"`
	OpenAlexBaseURL    string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	PatentsViewBaseURL string `envconfig:"PATENTSVIEW_BASE_URL" default:"https://api.patentsview.org/patents/query"`
	IMDbSuggestBaseURL string `envconfig:"IMDB_SUGGEST_BASE_URL" default:"https://v2.sg.media-imdb.com/suggestion"`
	IMDbTitleBaseURL   string `envconfig:"IMDB_TITLE_BASE_URL" default:"https://www.imdb.com"`

	// Adapter-Konfiguration
	EnabledAdapters       string `envconfig:"ENABLED_ADAPTERS" default:"openlibrary,wikipedia,musicbrainz,github,openalex,patentsview,imdb"`
	AdapterTimeoutSeconds int    `envconfig:"ADAPTER_TIMEOUT_SECONDS" default:"30"`
	ScrapingDelayMs       int    `envconfig:"SCRAPING_DELAY_MS" default:"1000"`
	UserAgent             string `envconfig:"SCRAPER_USER_AGENT" default:"copyhound/1.0 (metadata research)"`

	MaxSearchResults int     `envconfig:"MAX_SEARCH_RESULTS" default:"20"`
	MinSimilarity    float64 `envconfig:"MIN_SIMILARITY" default:"0.6"`

	RefreshCronSchedule  string `envconfig:"REFRESH_CRON_SCHEDULE" default:"0 3 * * *"`
	RefreshIntervalHours int    `envconfig:"REFRESH_INTERVAL_HOURS" default:"24"`
	RefreshBatchSize     int    `envconfig:"REFRESH_BATCH_SIZE" default:"50"`
	RefreshItemDelayMs   int    `envconfig:"REFRESH_ITEM_DELAY_MS" default:"1000"`

	// Encoder-Auswahl: "tfidf" oder "hashing"
	TextEncoder string `envconfig:"TEXT_ENCODER" default:"tfidf"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// AdapterTimeout gibt das Timeout für einen einzelnen Katalog-Aufruf zurück.
func (c *Config) AdapterTimeout() time.Duration {
	return time.Duration(c.AdapterTimeoutSeconds) * time.Second
}

// ScrapingDelay gibt die Mindestpause zwischen Aufrufen desselben Katalogs zurück.
func (c *Config) ScrapingDelay() time.Duration {
	return time.Duration(c.ScrapingDelayMs) * time.Millisecond
}

// RefreshInterval gibt das Aktualisierungsintervall für Bestandsdaten zurück.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalHours) * time.Hour
}

// RefreshItemDelay gibt die Pause zwischen zwei Datensätzen eines Refresh-Laufs zurück.
func (c *Config) RefreshItemDelay() time.Duration {
	return time.Duration(c.RefreshItemDelayMs) * time.Millisecond
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
