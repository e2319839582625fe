package config

type Config struct {
	AppName                       string   `koanf:"app_name" validate:"required"`
	Port                          int      `koanf:"port" validate:"gt=0"`
	LogLevel                      string   `koanf:"log_level"`
	PrettyLogs                    bool     `koanf:"pretty_logs"`
	HttpServerWriteTimeoutSeconds int      `koanf:"http_server_write_timeout_seconds"`
	HttpServerReadTimeoutSeconds  int      `koanf:"http_server_read_timeout_seconds"`
	HttpServerIdleTimeoutSeconds  int      `koanf:"http_server_idle_timeout_seconds"`
	AllowOrigins                  []string `koanf:"http_server_allow_origins"`
	AllowMethods                  []string `koanf:"http_server_allow_methods"`

	// Artifacts and cache
	DataDir       string `koanf:"data_dir" validate:"required"`
	CacheDBPath   string `koanf:"cache_db_path" validate:"required"`
	CacheTTLHours int    `koanf:"cache_ttl_hours" validate:"gt=0"`

	// Collection export
	CollectionPath    string `koanf:"collection_path" validate:"required"`
	IncludeExpansions bool   `koanf:"include_expansions"`

	// BGG scraping
	BGGBaseURL          string `koanf:"bgg_base_url" validate:"url"`
	BGGRequestDelayMS   int    `koanf:"bgg_request_delay_ms" validate:"gte=0"`
	BGGTimeoutSeconds   int    `koanf:"bgg_timeout_seconds" validate:"gt=0"`
	EssenBaseURL        string `koanf:"essen_base_url" validate:"url"`
	EssenTimeoutSeconds int    `koanf:"essen_timeout_seconds" validate:"gt=0"`

	// Matching. Thresholds are on the 0-100 scale and intentionally not
	// validated; out-of-range values degrade to never/always matching.
	PublisherThreshold      float64 `koanf:"publisher_threshold"`
	BatchPublisherThreshold float64 `koanf:"batch_publisher_threshold"`
	ProductThreshold        float64 `koanf:"product_threshold"`
	MatchWorkerCount        int     `koanf:"match_worker_count" validate:"gt=0"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		AppName:                       "spielplan",
		Port:                          3004,
		LogLevel:                      "info",
		PrettyLogs:                    false,
		HttpServerWriteTimeoutSeconds: 10,
		HttpServerReadTimeoutSeconds:  10,
		HttpServerIdleTimeoutSeconds:  10,
		AllowOrigins:                  []string{"*"},
		AllowMethods:                  []string{"GET"},

		DataDir:       "data/output",
		CacheDBPath:   "data/cache/pages.db",
		CacheTTLHours: 168, // one week; Essen data barely moves inside it

		CollectionPath:    "collection.csv",
		IncludeExpansions: false,

		BGGBaseURL:          "https://boardgamegeek.com",
		BGGRequestDelayMS:   2000,
		BGGTimeoutSeconds:   30,
		EssenBaseURL:        "https://maps.eyeled-services.de",
		EssenTimeoutSeconds: 60,

		PublisherThreshold:      80,
		BatchPublisherThreshold: 90,
		ProductThreshold:        85,
		MatchWorkerCount:        4,
	}
}
