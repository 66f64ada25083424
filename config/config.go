// Package config loads the layered application configuration: defaults,
// an optional config file, and environment variables, via viper, with
// the server command's flags bound in through pflag. A subset of
// tunables — the ones safe to change without restarting a live
// connection — are re-read on every fsnotify event against the config
// file, matching the teacher's own viper/fsnotify pairing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Lobby     LobbyConfig
	WS        WSConfig
	Telemetry TelemetryConfig
	Pairing   PairingConfig
	Metrics   MetricsConfig
}

type HTTPConfig struct {
	Addr      string
	StaticDir string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	BreakerName    string
}

// LobbyConfig tunes the Lobby's event channel. EventBuffer is one of
// the values hot-reloadable via fsnotify, though a running Lobby keeps
// its original channel for its own lifetime — a change here takes
// effect for the next process restart or, in a future revision, a
// Lobby rebuild.
type LobbyConfig struct {
	EventBuffer int
}

// WSConfig tunes the Connection Endpoint's heartbeat, per spec.md §4.1.
type WSConfig struct {
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
	MailboxSize       int
}

// TelemetryConfig resolves spec.md §9's period-filter Open Question:
// "legacy" reproduces the original D-M-YYYY lexicographic comparison,
// "iso" filters on an additional YYYY-MM-DD date_key field instead.
type TelemetryConfig struct {
	DateFormat string
	ShardCount int
}

type PairingConfig struct {
	CacheSize int
}

type MetricsConfig struct {
	Enabled bool
}

// Load builds a Config from defaults, an optional file named by
// --config_file (bound via pflag), and environment variables prefixed
// FLEET_. A watch on the config file keeps a live *Config's
// hot-reloadable fields current; see Watch.
func Load(flags *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.static_dir", "web/static")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "fleet")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.breaker_name", "mongo")

	v.SetDefault("lobby.event_buffer", 4096)

	v.SetDefault("ws.heartbeat_interval", 5*time.Second)
	v.SetDefault("ws.pong_timeout", 10*time.Second)
	v.SetDefault("ws.mailbox_size", 64)

	v.SetDefault("telemetry.date_format", "legacy")
	v.SetDefault("telemetry.shard_count", 64)

	v.SetDefault("pairing.cache_size", 10000)

	v.SetDefault("metrics.enabled", true)
}

func decode(v *viper.Viper) (*Config, error) {
	return &Config{
		HTTP: HTTPConfig{
			Addr:      v.GetString("http.addr"),
			StaticDir: v.GetString("http.static_dir"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongo.uri"),
			Database:       v.GetString("mongo.database"),
			ConnectTimeout: v.GetDuration("mongo.connect_timeout"),
			BreakerName:    v.GetString("mongo.breaker_name"),
		},
		Lobby: LobbyConfig{
			EventBuffer: v.GetInt("lobby.event_buffer"),
		},
		WS: WSConfig{
			HeartbeatInterval: v.GetDuration("ws.heartbeat_interval"),
			PongTimeout:       v.GetDuration("ws.pong_timeout"),
			MailboxSize:       v.GetInt("ws.mailbox_size"),
		},
		Telemetry: TelemetryConfig{
			DateFormat: v.GetString("telemetry.date_format"),
			ShardCount: v.GetInt("telemetry.shard_count"),
		},
		Pairing: PairingConfig{
			CacheSize: v.GetInt("pairing.cache_size"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}, nil
}

// Flags declares the server command's flags, bound into viper by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.String("config_file", "", "path to a YAML/JSON/TOML configuration file")
	fs.String("http.addr", "", "HTTP listen address")
	fs.String("mongo.uri", "", "MongoDB connection URI")
	return fs
}

// Watch re-reads the hot-reloadable subset of cfg (ws heartbeat/pong
// timeouts, lobby/ws mailbox sizing) whenever the bound config file
// changes on disk, and invokes onChange with the refreshed values.
// Fields outside that subset (Mongo URI, HTTP address) require a
// restart, since they're consumed once at construction time.
func Watch(v *viper.Viper, onChange func(WSConfig, LobbyConfig)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(WSConfig{
			HeartbeatInterval: v.GetDuration("ws.heartbeat_interval"),
			PongTimeout:       v.GetDuration("ws.pong_timeout"),
			MailboxSize:       v.GetInt("ws.mailbox_size"),
		}, LobbyConfig{
			EventBuffer: v.GetInt("lobby.event_buffer"),
		})
	})
	v.WatchConfig()
}
