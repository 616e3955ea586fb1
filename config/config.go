package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	OCR     OCRConfig     `yaml:"ocr"`
	PDF     PDFConfig     `yaml:"pdf"`
	Cache   CacheConfig   `yaml:"cache"`
	Upload  UploadConfig  `yaml:"upload"`
	Storage StorageConfig `yaml:"storage"`
	Store   StoreConfig   `yaml:"store"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type GeminiConfig struct {
	APIURL            string  `yaml:"api_url"`
	APIKey            string  `yaml:"api_key"`
	CapableModel      string  `yaml:"capable_model"`
	EconomyModel      string  `yaml:"economy_model"`
	CapableDailyLimit int     `yaml:"capable_daily_limit"`
	EconomyDailyLimit int     `yaml:"economy_daily_limit"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	TopP              float64 `yaml:"top_p"`
	TopK              int     `yaml:"top_k"`
}

type OCRConfig struct {
	Languages []string `yaml:"languages"` // tesseract language codes, e.g. kor, eng
}

type PDFConfig struct {
	NativeTextThreshold int `yaml:"native_text_threshold"`
	RenderDPI           int `yaml:"render_dpi"`
}

type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
	MaxEntries int `yaml:"max_entries"`
}

type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

type StorageConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type StoreConfig struct {
	MaxRecords int `yaml:"max_records"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Gemini.APIURL == "" {
		cfg.Gemini.APIURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Gemini.CapableModel == "" {
		cfg.Gemini.CapableModel = "gemini-2.5-pro"
	}
	if cfg.Gemini.EconomyModel == "" {
		cfg.Gemini.EconomyModel = "gemini-2.5-flash"
	}
	if cfg.Gemini.CapableDailyLimit == 0 {
		cfg.Gemini.CapableDailyLimit = 200
	}
	if cfg.Gemini.EconomyDailyLimit == 0 {
		cfg.Gemini.EconomyDailyLimit = 1000
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 90
	}
	if cfg.Gemini.TopP == 0 {
		cfg.Gemini.TopP = 0.95
	}
	if cfg.Gemini.TopK == 0 {
		cfg.Gemini.TopK = 40
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"kor", "eng"}
	}
	if cfg.PDF.NativeTextThreshold == 0 {
		cfg.PDF.NativeTextThreshold = 50
	}
	if cfg.PDF.RenderDPI == 0 {
		cfg.PDF.RenderDPI = 300
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 30
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 512
	}
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = 20
	}
	if cfg.Storage.ExpireDays == 0 {
		cfg.Storage.ExpireDays = 7
	}
	if cfg.Store.MaxRecords == 0 {
		cfg.Store.MaxRecords = 200
	}

	return &cfg, nil
}
