package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// SourceConfig describes where the documentation payloads are fetched from.
// BaseURL may be an http(s) URL or a local directory; the per-payload names
// are joined onto it. A bare string in the config file is accepted as a
// base-URL-only source.
type SourceConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	Catalog          string `mapstructure:"catalog"`
	Comments         string `mapstructure:"comments"`
	XMLLinks         string `mapstructure:"xml_links"`
	TranslationLinks string `mapstructure:"translation_links"`
}

// CatalogURL returns the resolved location of the main catalog payload.
func (s SourceConfig) CatalogURL() string { return s.resolve(s.Catalog) }

// CommentsURL returns the resolved location of the comments payload.
func (s SourceConfig) CommentsURL() string { return s.resolve(s.Comments) }

// XMLLinksURL returns the resolved location of the XML usage payload.
func (s SourceConfig) XMLLinksURL() string { return s.resolve(s.XMLLinks) }

// TranslationLinksURL returns the resolved location of the translation usage payload.
func (s SourceConfig) TranslationLinksURL() string { return s.resolve(s.TranslationLinks) }

func (s SourceConfig) resolve(name string) string {
	if name == "" {
		return ""
	}
	if strings.Contains(name, "://") || filepath.IsAbs(name) {
		return name
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		return name
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return base + "/" + name
	}
	return filepath.Join(base, name)
}

type DaemonConfig struct {
	ExpirationSeconds int `mapstructure:"expiration_seconds"`
}

type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Daemon DaemonConfig `mapstructure:"daemon"`
}

// cacheBase returns the base cache directory for csdex.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/csdex as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "csdex")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "csdex")
	}
	return filepath.Join(os.TempDir(), "csdex")
}

// PayloadCacheDir returns the path to the on-disk payload cache directory.
func PayloadCacheDir() string {
	return filepath.Join(cacheBase(), "payloads")
}

// LogPath returns the path to the daemon's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "daemon.log")
}

// SocketPath returns the path to the daemon's unix socket.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "csdex", "daemon.sock")
	}
	return filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "csdex", "daemon.sock")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "csdex"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "csdex"))
	}

	viper.SetDefault("source.catalog", "docs_enhanced.json")
	viper.SetDefault("source.comments", "comments.json")
	viper.SetDefault("source.xml_links", "xml_class_links.json")
	viper.SetDefault("source.translation_links", "translation_links.json")
	viper.SetDefault("daemon.expiration_seconds", 600)

	viper.SetEnvPrefix("CSDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// stringToSourceConfigHookFunc lets `source = "https://example.com/docs"`
// stand in for the full [source] table.
func stringToSourceConfigHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(SourceConfig{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return SourceConfig{BaseURL: data.(string)}, nil
		}
		return data, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToSourceConfigHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The decode hook drops per-payload defaults when the source is given
	// as a bare string; restore them.
	if config.Source.Catalog == "" {
		config.Source.Catalog = "docs_enhanced.json"
	}
	if config.Source.Comments == "" {
		config.Source.Comments = "comments.json"
	}
	if config.Source.XMLLinks == "" {
		config.Source.XMLLinks = "xml_class_links.json"
	}
	if config.Source.TranslationLinks == "" {
		config.Source.TranslationLinks = "translation_links.json"
	}

	return &config, nil
}
