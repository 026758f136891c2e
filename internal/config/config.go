package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/carbonaccess/plategate/internal/db"
	"github.com/carbonaccess/plategate/internal/plategate/ocr"
	"github.com/carbonaccess/plategate/internal/plategate/vision"
)

const EnvPrefix = "PLATEGATE"

type Config struct {
	Env      string `mapstructure:"env"` // "dev" | "prod"
	Timezone string `mapstructure:"timezone"`

	DB         DBConfig         `mapstructure:"db"`
	Log        LogConfig        `mapstructure:"log"`
	Access     AccessConfig     `mapstructure:"access"`
	Plate      PlateConfig      `mapstructure:"plate"`
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	OCR        OCRConfig        `mapstructure:"ocr"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" | "json"
	Output string `mapstructure:"output"` // "stdout" | "stderr" | file path
}

type AccessConfig struct {
	LogUnregistered bool `mapstructure:"log_unregistered"`
}

type PlateConfig struct {
	RankByConfidence bool `mapstructure:"rank_by_confidence"`
}

type PreprocessConfig struct {
	MinWidth  int     `mapstructure:"min_width"`
	Equalize  bool    `mapstructure:"equalize"`
	BlurSigma float64 `mapstructure:"blur_sigma"`
	Threshold string  `mapstructure:"threshold"` // "otsu" | "adaptive"
	BlockSize int     `mapstructure:"block_size"`
	Offset    int     `mapstructure:"offset"`
	Invert    bool    `mapstructure:"invert"`
}

type OCRConfig struct {
	Backend       string   `mapstructure:"backend"` // "tesseract" | "rekognition" | "none"
	Languages     []string `mapstructure:"languages"`
	MinConfidence float64  `mapstructure:"min_confidence"`
	AWSRegion     string   `mapstructure:"aws_region"`
}

// Load reads configuration from, in increasing priority: defaults, the
// config file (path, or plategate.yaml in the usual places), a .env file in
// the working directory, and PLATEGATE_* environment variables.
func Load(path string) (Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("plategate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "plategate"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	cfg.OCR.Languages = splitCSV(strings.Join(cfg.OCR.Languages, ","))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("timezone", "America/Sao_Paulo")

	v.SetDefault("db.path", db.DefaultPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("access.log_unregistered", true)
	v.SetDefault("plate.rank_by_confidence", false)

	def := vision.DefaultOptions()
	v.SetDefault("preprocess.min_width", def.MinWidth)
	v.SetDefault("preprocess.equalize", def.Equalize)
	v.SetDefault("preprocess.blur_sigma", def.BlurSigma)
	v.SetDefault("preprocess.threshold", string(def.Threshold))
	v.SetDefault("preprocess.block_size", def.BlockSize)
	v.SetDefault("preprocess.offset", def.Offset)
	v.SetDefault("preprocess.invert", def.Invert)

	v.SetDefault("ocr.backend", ocr.BackendTesseract)
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.min_confidence", 0.0)
	v.SetDefault("ocr.aws_region", "")
}

func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := vision.ParseThresholdMode(c.Preprocess.Threshold); err != nil {
		return err
	}
	switch strings.ToLower(c.OCR.Backend) {
	case "", ocr.BackendTesseract, ocr.BackendRekognition, ocr.BackendNone:
	default:
		return fmt.Errorf("unknown ocr backend %q", c.OCR.Backend)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("ocr.min_confidence must be within [0, 1], got %v", c.OCR.MinConfidence)
	}
	if c.Preprocess.MinWidth < 0 {
		return fmt.Errorf("preprocess.min_width must not be negative")
	}
	return nil
}

// Location is the business timezone used for report day boundaries.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) DatabaseOptions() db.Config {
	return db.Config{Path: c.DB.Path}
}

func (c Config) VisionOptions() vision.Options {
	mode, _ := vision.ParseThresholdMode(c.Preprocess.Threshold)
	return vision.Options{
		MinWidth:  c.Preprocess.MinWidth,
		Equalize:  c.Preprocess.Equalize,
		BlurSigma: c.Preprocess.BlurSigma,
		Threshold: mode,
		BlockSize: c.Preprocess.BlockSize,
		Offset:    c.Preprocess.Offset,
		Invert:    c.Preprocess.Invert,
	}
}

func (c Config) OCROptions() ocr.Config {
	return ocr.Config{
		Backend:       strings.ToLower(c.OCR.Backend),
		Languages:     c.OCR.Languages,
		MinConfidence: c.OCR.MinConfidence,
		AWSRegion:     c.OCR.AWSRegion,
	}
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
