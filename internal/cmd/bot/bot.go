// Package bot parses bot command flags and launches the bot runtime.
package bot

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/Sasabodun/kontraktbot/internal/platform/cmd"
	botserver "github.com/Sasabodun/kontraktbot/internal/services/contracts/app"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

// Config holds bot command configuration.
type Config struct {
	Port        int    `env:"KONTRAKTBOT_PORT" envDefault:"8090"`
	DBPath      string `env:"KONTRAKTBOT_DB_PATH" envDefault:"data/bot.db"`
	Locale      string `env:"KONTRAKTBOT_LOCALE" envDefault:"ru"`
	RoleMention string `env:"KONTRAKTBOT_ROLE_MENTION" envDefault:"@here"`
	BotUserID   string `env:"KONTRAKTBOT_BOT_USER_ID" envDefault:"kontraktbot"`

	JoinWindow        time.Duration `env:"KONTRAKTBOT_JOIN_WINDOW" envDefault:"10m"`
	AnnouncementDelay time.Duration `env:"KONTRAKTBOT_ANNOUNCEMENT_DELAY" envDefault:"30s"`
	AnnouncementTTL   time.Duration `env:"KONTRAKTBOT_ANNOUNCEMENT_TTL" envDefault:"5m"`
	ReaperInterval    time.Duration `env:"KONTRAKTBOT_REAPER_INTERVAL" envDefault:"10m"`
	Retention         time.Duration `env:"KONTRAKTBOT_RETENTION" envDefault:"2h"`
	DMDeletePause     time.Duration `env:"KONTRAKTBOT_DM_DELETE_PAUSE" envDefault:"500ms"`
	DMScanLimit       int           `env:"KONTRAKTBOT_DM_SCAN_LIMIT" envDefault:"200"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The bot health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The audit SQLite database path")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Message locale (ru or en)")
	fs.StringVar(&cfg.RoleMention, "role-mention", cfg.RoleMention, "Group mention used in urgency messages")
	fs.DurationVar(&cfg.JoinWindow, "join-window", cfg.JoinWindow, "Recruitment window per contract")
	fs.DurationVar(&cfg.AnnouncementDelay, "announcement-delay", cfg.AnnouncementDelay, "Delay before the closure announcement")
	fs.DurationVar(&cfg.AnnouncementTTL, "announcement-ttl", cfg.AnnouncementTTL, "Lifetime of the closure announcement")
	fs.DurationVar(&cfg.ReaperInterval, "reaper-interval", cfg.ReaperInterval, "Archive reaper sweep period")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "Archive retention before purge")
	fs.DurationVar(&cfg.DMDeletePause, "dm-delete-pause", cfg.DMDeletePause, "Pause between direct-channel deletes")
	fs.IntVar(&cfg.DMScanLimit, "dm-scan-limit", cfg.DMScanLimit, "Direct-channel cleanup history window")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the bot runtime. The platform session adapter is supplied by
// the embedding process; when gw is nil the bot runs against the in-memory
// gateway, which keeps every outbound call local.
func Run(ctx context.Context, cfg Config, gw gateway.Gateway) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBot, func(context.Context) error {
		if gw == nil {
			gw = gateway.NewMemory(cfg.BotUserID)
		}
		bot, err := botserver.New(botserver.RuntimeConfig{
			Port:              cfg.Port,
			DBPath:            cfg.DBPath,
			Locale:            cfg.Locale,
			RoleMention:       cfg.RoleMention,
			JoinWindow:        cfg.JoinWindow,
			AnnouncementDelay: cfg.AnnouncementDelay,
			AnnouncementTTL:   cfg.AnnouncementTTL,
			ReaperInterval:    cfg.ReaperInterval,
			Retention:         cfg.Retention,
			DMDeletePause:     cfg.DMDeletePause,
			DMScanLimit:       cfg.DMScanLimit,
			Gateway:           gw,
		})
		if err != nil {
			return fmt.Errorf("init bot: %w", err)
		}
		defer bot.Close()

		if err := bot.Run(ctx); err != nil {
			return fmt.Errorf("serve bot: %w", err)
		}
		return nil
	})
}
