package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Common holds settings shared by every command.
type Common struct {
	Chain          string
	Endpoint       string
	RPCURL         string
	Block          uint64
	PageSize       int
	PageDelay      time.Duration
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	ReportPoolType string
	Out            string
	PGDSN          string
	MetricsAddr    string
	LogLevel       string
}

// RunConfig holds configuration of a single-day computation.
type RunConfig struct {
	Common
	Day string
}

// BackfillConfig holds configuration of a multi-day backfill.
type BackfillConfig struct {
	Common
	From      string
	To        string
	StateFile string
}

// Load merges config file, environment variables, and flags into RunConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return RunConfig{}, err
	}
	return RunConfig{
		Common: loadCommon(v),
		Day:    v.GetString("day"),
	}, nil
}

// LoadBackfill merges config file, environment variables, and flags into BackfillConfig.
func LoadBackfill(cfgFile string, flags *pflag.FlagSet) (BackfillConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return BackfillConfig{}, err
	}
	return BackfillConfig{
		Common:    loadCommon(v),
		From:      v.GetString("from"),
		To:        v.GetString("to"),
		StateFile: v.GetString("state-file"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("FEESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain", "sonic")
	v.SetDefault("page-size", 1000)
	v.SetDefault("page-delay", 200*time.Millisecond)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("report-pool-type", "cl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadCommon(v *viper.Viper) Common {
	return Common{
		Chain:          strings.TrimSpace(v.GetString("chain")),
		Endpoint:       strings.TrimSpace(v.GetString("endpoint")),
		RPCURL:         strings.TrimSpace(v.GetString("rpc")),
		Block:          v.GetUint64("block"),
		PageSize:       v.GetInt("page-size"),
		PageDelay:      v.GetDuration("page-delay"),
		Timeout:        v.GetDuration("timeout"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		ReportPoolType: v.GetString("report-pool-type"),
		Out:            v.GetString("out"),
		PGDSN:          v.GetString("pg-dsn"),
		MetricsAddr:    v.GetString("metrics-addr"),
		LogLevel:       v.GetString("log-level"),
	}
}
