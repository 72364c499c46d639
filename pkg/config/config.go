/*
Package config manages the TOML config for spellserve.

The config file lives in the user config directory (config.toml). A missing
file is created with defaults; a file with bad values keeps whatever sections
still parse. An optional spellserve.env next to it, or the process
environment, can override the log level and the user dictionary directory.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/bastiangx/spellserve/internal/utils"
)

const (
	// FileName is the config file name inside the config directory.
	FileName = "config.toml"
	// EnvFileName is the optional override file next to the config.
	EnvFileName = "spellserve.env"

	EnvLogLevel = "SPELLSERVE_LOG_LEVEL"
	EnvDictDir  = "SPELLSERVE_DICT_DIR"
)

// Config holds the entire config structure
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Dict        DictConfig        `toml:"dict"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig has request limits shared by every transport.
type ServerConfig struct {
	CompletionLimit  int  `toml:"completion_limit"`
	SuggestionLimit  int  `toml:"suggestion_limit"`
	MinPrefix        int  `toml:"min_prefix"`
	MaxPrefix        int  `toml:"max_prefix"`
	MaxDistance      int  `toml:"max_distance"`
	AdaptiveDistance bool `toml:"adaptive_distance"`
}

// DictConfig locates user dictionaries. An empty UserDir means the config dir.
type DictConfig struct {
	UserDir     string `toml:"user_dir"`
	UserFile    string `toml:"user_file"`
	Extension   string `toml:"extension"`
	LoadWorkers int    `toml:"load_workers"`
}

// DiagnosticsConfig tunes the background spell check.
type DiagnosticsConfig struct {
	DebounceMs int `toml:"debounce_ms"`
	Workers    int `toml:"workers"`
	// MaxPerDocument caps published diagnostics; 0 keeps them all.
	MaxPerDocument int `toml:"max_per_document"`
}

// CacheConfig sizes the result caches. MaxCost counts cached result items
// (one per returned word), not bytes.
type CacheConfig struct {
	MaxCost int  `toml:"max_cost"`
	Enabled bool `toml:"enabled"`
}

// LogConfig selects the log level and formatter.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			CompletionLimit:  50,
			SuggestionLimit:  10,
			MinPrefix:        2,
			MaxPrefix:        60,
			MaxDistance:      2,
			AdaptiveDistance: false,
		},
		Dict: DictConfig{
			UserFile:    "slownik.txt",
			Extension:   ".txt",
			LoadWorkers: 4,
		},
		Diagnostics: DiagnosticsConfig{
			DebounceMs:     150,
			Workers:        4,
			MaxPerDocument: 0,
		},
		Cache: CacheConfig{
			MaxCost: 1 << 22,
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// GetConfigDir returns the config directory, or the executable directory when
// the home directory cannot be determined.
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve paths: %v", err)
		return "", err
	}
	return pr.GetConfigDir(), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/spellserve/config.toml
// 3. Builtin defaults
//
// Env overrides are applied in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadWithPriority(customConfigPath)
	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	config.ApplyEnv(dir)
	config.Normalize()
	return config, path, nil
}

func loadWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every value that has the right type.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "diagnostics"); ok {
		extractDiagnosticsConfig(section, &config.Diagnostics)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(section, &config.Cache)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		extractLogConfig(section, &config.Log)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "completion_limit"); ok {
		server.CompletionLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "suggestion_limit"); ok {
		server.SuggestionLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_distance"); ok {
		server.MaxDistance = val
	}
	if val, ok := utils.ExtractBool(data, "adaptive_distance"); ok {
		server.AdaptiveDistance = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "user_dir"); ok {
		dict.UserDir = val
	}
	if val, ok := utils.ExtractString(data, "user_file"); ok {
		dict.UserFile = val
	}
	if val, ok := utils.ExtractString(data, "extension"); ok {
		dict.Extension = val
	}
	if val, ok := utils.ExtractInt64(data, "load_workers"); ok {
		dict.LoadWorkers = val
	}
}

func extractDiagnosticsConfig(data map[string]any, diag *DiagnosticsConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		diag.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		diag.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "max_per_document"); ok {
		diag.MaxPerDocument = val
	}
}

func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractInt64(data, "max_cost"); ok {
		cache.MaxCost = val
	}
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		cache.Enabled = val
	}
}

func extractLogConfig(data map[string]any, l *LogConfig) {
	if val, ok := utils.ExtractString(data, "level"); ok {
		l.Level = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		l.Format = val
	}
}

// ApplyEnv overrides values from <dir>/spellserve.env and then from the
// process environment.
func (c *Config) ApplyEnv(dir string) {
	env := map[string]string{}
	if dir != "" {
		envPath := filepath.Join(dir, EnvFileName)
		if utils.FileExists(envPath) {
			vals, err := godotenv.Read(envPath)
			if err != nil {
				log.Warnf("Ignoring %s: %v", envPath, err)
			} else {
				env = vals
			}
		}
	}
	for _, key := range []string{EnvLogLevel, EnvDictDir} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	if v := env[EnvLogLevel]; v != "" {
		c.Log.Level = v
	}
	if v := env[EnvDictDir]; v != "" {
		c.Dict.UserDir = v
	}
}

// Normalize replaces out-of-range values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	positive := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	positive(&c.Server.CompletionLimit, def.Server.CompletionLimit)
	positive(&c.Server.SuggestionLimit, def.Server.SuggestionLimit)
	positive(&c.Server.MinPrefix, def.Server.MinPrefix)
	positive(&c.Server.MaxPrefix, def.Server.MaxPrefix)
	if c.Server.MaxDistance < 0 {
		c.Server.MaxDistance = def.Server.MaxDistance
	}
	if c.Server.MaxPrefix < c.Server.MinPrefix {
		c.Server.MaxPrefix = max(c.Server.MinPrefix, def.Server.MaxPrefix)
	}
	positive(&c.Dict.LoadWorkers, def.Dict.LoadWorkers)
	if c.Dict.UserFile == "" {
		c.Dict.UserFile = def.Dict.UserFile
	}
	if c.Dict.Extension == "" {
		c.Dict.Extension = def.Dict.Extension
	}
	if c.Diagnostics.DebounceMs < 0 {
		c.Diagnostics.DebounceMs = def.Diagnostics.DebounceMs
	}
	positive(&c.Diagnostics.Workers, def.Diagnostics.Workers)
	if c.Diagnostics.MaxPerDocument < 0 {
		c.Diagnostics.MaxPerDocument = def.Diagnostics.MaxPerDocument
	}
	positive(&c.Cache.MaxCost, def.Cache.MaxCost)
}

// UserDictDir returns the directory scanned for user dictionaries.
func (c *Config) UserDictDir(configDir string) string {
	if c.Dict.UserDir != "" {
		return c.Dict.UserDir
	}
	return configDir
}

// UserDictPath returns the file that added words are appended to.
func (c *Config) UserDictPath(configDir string) string {
	return filepath.Join(c.UserDictDir(configDir), c.Dict.UserFile)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the request limits and saves to file
func (c *Config) Update(configPath string, completionLimit, suggestionLimit, maxDistance *int) error {
	server := &c.Server
	if completionLimit != nil {
		server.CompletionLimit = *completionLimit
	}
	if suggestionLimit != nil {
		server.SuggestionLimit = *suggestionLimit
	}
	if maxDistance != nil {
		server.MaxDistance = *maxDistance
	}
	c.Normalize()
	return SaveConfig(c, configPath)
}
