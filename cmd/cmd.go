package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ngo-platform",
	Short: "NGO Platform",
	Long:  `Registers and moderates NGOs, and takes donations for verified organizations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path. Every key can be overridden from the
// environment, e.g. ENV_PAYMENT_SECRET_KEY for payment.secret_key.
func loadConfig(path string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// a container may run on environment variables alone
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		bindEnvKeys(v)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return &cfg, nil
}

// bindEnvKeys registers the keys Unmarshal needs to see when no file declares
// them; AutomaticEnv only answers for keys viper already knows.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"http_server.port", "http_server.base_url", "http_server.allowed_origins",
		"http_server.read_header_timeout", "http_server.read_timeout",
		"http_server.idle_timeout", "http_server.write_timeout", "http_server.secure_cookies",
		"database.source", "database.max_open_conns", "database.max_idle_conns",
		"database.conn_max_lifetime", "database.conn_max_idle_time",
		"security.jwt_secret", "security.access_token_duration", "security.token_secret",
		"security.registration_token_ttl", "security.donation_intent_ttl",
		"security.bcrypt_cost", "security.max_upload_size_mb",
		"payment.secret_key", "payment.currency", "payment.success_url",
		"payment.cancel_url", "payment.timeout", "payment.backend_url", "payment.webhook_secret",
		"mail.host", "mail.port", "mail.username", "mail.password", "mail.from",
		"mail.timeout", "mail.workers", "mail.queue_size",
		"storage.driver", "storage.upload_dir", "storage.s3_bucket",
		"storage.s3_region", "storage.s3_prefix",
		"observability.logging.level", "observability.logging.format",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
