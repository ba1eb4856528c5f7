package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FrequencyBucket is one customer visit-frequency band. A nil Max means the
// band is open-ended.
type FrequencyBucket struct {
	Label string `mapstructure:"label"`
	Min   int    `mapstructure:"min"`
	Max   *int   `mapstructure:"max"`
}

// ReportConfig carries tunable aggregation limits. Defaults match the
// shipped report behavior; deployments can override via reports.yml.
type ReportConfig struct {
	FrequencyBuckets []FrequencyBucket `mapstructure:"frequencyBuckets"`
	TopProductsLimit int               `mapstructure:"topProductsLimit"`
	TopSpendersLimit int               `mapstructure:"topSpendersLimit"`
	WonDealScanCap   int               `mapstructure:"wonDealScanCap"`
	TrailingMonths   int               `mapstructure:"trailingMonths"`
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		FrequencyBuckets: []FrequencyBucket{
			{Label: "1", Min: 1, Max: intPtr(1)},
			{Label: "2-5", Min: 2, Max: intPtr(5)},
			{Label: "6-10", Min: 6, Max: intPtr(10)},
			{Label: "11-20", Min: 11, Max: intPtr(20)},
			{Label: "20+", Min: 21, Max: nil},
		},
		TopProductsLimit: 10,
		TopSpendersLimit: 10,
		WonDealScanCap:   100,
		TrailingMonths:   6,
	}
}

func intPtr(v int) *int { return &v }

// ReportConfigHolder exposes the current report tuning config and swaps it
// atomically on file change.
type ReportConfigHolder struct {
	current atomic.Value // holds ReportConfig
}

func NewReportConfigHolder() (*ReportConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reports")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/analytics/config")
	v.AddConfigPath("/etc/analytics")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("reports.frequencyBuckets", defaults.FrequencyBuckets)
		v.SetDefault("reports.topProductsLimit", defaults.TopProductsLimit)
		v.SetDefault("reports.topSpendersLimit", defaults.TopSpendersLimit)
		v.SetDefault("reports.wonDealScanCap", defaults.WonDealScanCap)
		v.SetDefault("reports.trailingMonths", defaults.TrailingMonths)
	}

	var cfg ReportConfig
	if err := v.UnmarshalKey("reports", &cfg); err != nil {
		return nil, err
	}
	cfg = applyReportDefaults(cfg, defaults)
	if err := validateReportConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportConfig
		if err := v.UnmarshalKey("reports", &updated); err != nil {
			log.Printf("[report-config] reload failed: %v", err)
			return
		}
		updated = applyReportDefaults(updated, defaults)
		if err := validateReportConfig(updated); err != nil {
			log.Printf("[report-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[report-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticReportConfigHolder wraps a fixed config with no file watching.
func NewStaticReportConfigHolder(cfg ReportConfig) *ReportConfigHolder {
	cfg = applyReportDefaults(cfg, DefaultReportConfig())
	holder := &ReportConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReportConfigHolder) Get() ReportConfig {
	return h.current.Load().(ReportConfig)
}

func applyReportDefaults(cfg, defaults ReportConfig) ReportConfig {
	if len(cfg.FrequencyBuckets) == 0 {
		cfg.FrequencyBuckets = defaults.FrequencyBuckets
	}
	if cfg.TopProductsLimit <= 0 {
		cfg.TopProductsLimit = defaults.TopProductsLimit
	}
	if cfg.TopSpendersLimit <= 0 {
		cfg.TopSpendersLimit = defaults.TopSpendersLimit
	}
	if cfg.WonDealScanCap <= 0 {
		cfg.WonDealScanCap = defaults.WonDealScanCap
	}
	if cfg.TrailingMonths <= 0 {
		cfg.TrailingMonths = defaults.TrailingMonths
	}
	return cfg
}

func validateReportConfig(cfg ReportConfig) error {
	if len(cfg.FrequencyBuckets) == 0 {
		return errors.New("reports.frequencyBuckets cannot be empty")
	}
	for _, b := range cfg.FrequencyBuckets {
		if b.Max != nil && *b.Max < b.Min {
			return errors.New("reports.frequencyBuckets bounds out of order")
		}
	}
	return nil
}
