package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Count    int           `mapstructure:"count" validate:"gte=1"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type Config struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"gte=512"`
	PingPeriod time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	SendBuffer int           `mapstructure:"send_buffer" validate:"gte=1"`
	Secret     string        `mapstructure:"secret"`

	RequireExistingRoom bool `mapstructure:"require_existing_room"`
	GateScreenShare     bool `mapstructure:"gate_screen_share"`
	ChatHistoryLimit    int  `mapstructure:"chat_history_limit" validate:"gte=0"`

	EmptyRoomTTL  time.Duration `mapstructure:"empty_room_ttl" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`

	RateLimit   RateLimit `mapstructure:"rate_limit"`
	ICEServers  []string  `mapstructure:"ice_servers"`
	MetricsPath string    `mapstructure:"metrics_path"`
}

// PongWait is how long a connection may stay silent before it is dropped.
func (c *Config) PongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "")
	v.SetDefault("require_existing_room", false)
	v.SetDefault("gate_screen_share", false)
	v.SetDefault("chat_history_limit", 200)
	v.SetDefault("empty_room_ttl", "10m")
	v.SetDefault("sweep_interval", "1m")
	v.SetDefault("rate_limit.count", 20)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("metrics_path", "/metrics")
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"mode":        "mode",
	"port":        "port",
	"static-path": "static_path",
	"secret":      "secret",
}

// Load reads config/config.<CONFIG_ENV>.yaml, then WATCH_* environment
// variables, then flags. A --config flag names the file explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			fileName = f.Value.String()
		}
	}
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvPrefix("WATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Secret == "" {
		cfg.Secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		log.Warn().Str("module", "config").Msg("no secret configured, sessions will not survive a restart")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
