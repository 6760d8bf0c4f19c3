package io

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/g026r/pocket-gallery/pkg/models"
)

const (
	EnvPrefix  = "GALLERY"
	configDir  = "pocket-gallery"
	configName = "config"
	configType = "toml"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	UI     UIConfig     `mapstructure:"ui"`
	Picker PickerConfig `mapstructure:"picker"`
	Log    LogConfig    `mapstructure:"log"`

	path string // Where SaveConfig writes to
}

type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Resolution     models.Resolution `mapstructure:"resolution"`
	Plain          bool              `mapstructure:"plain"`
	PreviewDelay   time.Duration     `mapstructure:"preview_delay"`
	RenderPreviews bool              `mapstructure:"render_previews"`
}

type PickerConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// Path is the file SaveConfig will write to.
func (c Config) Path() string {
	return c.path
}

// DefaultPath is $XDG_CONFIG_HOME/pocket-gallery/config.toml, or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDir, configName+"."+configType), nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir() // Blank is fine; the picker falls back to the working dir

	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.timeout", "15s")
	v.SetDefault("ui.resolution", string(models.DefaultResolution))
	v.SetDefault("ui.plain", false)
	v.SetDefault("ui.preview_delay", "500ms")
	v.SetDefault("ui.render_previews", true)
	v.SetDefault("picker.dir", home)
	v.SetDefault("log.file", "")
}

// Flags returns the command line flags understood by LoadConfig.
func Flags(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("server", "", "gallery server address")
	f.String("resolution", "", "starting resolution (250px, 500px or 750px)")
	f.Bool("plain", false, "use plain terminal menus instead of the full screen UI")
	f.String("config", "", "config file to use")
	return f
}

// LoadConfig builds the configuration from, in order of precedence: command line flags, GALLERY_* environment
// variables, the config file & finally the built-in defaults. A missing config file is not an error.
func LoadConfig(args []string) (Config, error) {
	flags := Flags("gallery")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType(configType)

	path, _ := flags.GetString("config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Config{}, err
		}
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Only flags the user actually set take priority over the other sources
	for key, flag := range map[string]string{
		"server.url":    "server",
		"ui.resolution": "resolution",
		"ui.plain":      "plain",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil && !missing(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	c := Config{path: path}
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	r, err := models.ParseResolution(string(c.UI.Resolution))
	if err != nil {
		return Config{}, fmt.Errorf("ui.resolution: %w", err)
	}
	c.UI.Resolution = r

	return c, nil
}

func missing(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// SaveConfig writes the config back to the file it was loaded from, creating the directory if needed.
func (c Config) SaveConfig() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("server.url", c.Server.URL)
	v.Set("server.timeout", c.Server.Timeout.String())
	v.Set("ui.resolution", string(c.UI.Resolution))
	v.Set("ui.plain", c.UI.Plain)
	v.Set("ui.preview_delay", c.UI.PreviewDelay.String())
	v.Set("ui.render_previews", c.UI.RenderPreviews)
	v.Set("picker.dir", c.Picker.Dir)
	v.Set("log.file", c.Log.File)

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
