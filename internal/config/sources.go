package config

import (
	"errors"
	"log"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SourcesConfig enumerates the input files per export family, oldest
// period first. File order is load order; latest-wins reconciliation
// depends on it.
type SourcesConfig struct {
	PeriodLabel string `mapstructure:"periodLabel"`

	Messages     []string `mapstructure:"messages"`
	Breakdown    []string `mapstructure:"breakdown"`
	Sales        []string `mapstructure:"sales"`
	CreatorStats []string `mapstructure:"creatorStats"`

	ClassificationPath string `mapstructure:"classificationPath"`
	TrackedHoursPath   string `mapstructure:"trackedHoursPath"`
}

func validateSourcesConfig(cfg SourcesConfig) error {
	if len(cfg.Messages) == 0 {
		return errors.New("sources: no message dashboard files configured")
	}
	if len(cfg.Breakdown) == 0 {
		return errors.New("sources: no detailed breakdown files configured")
	}
	if len(cfg.Sales) == 0 {
		return errors.New("sources: no sales record files configured")
	}
	if len(cfg.CreatorStats) == 0 {
		return errors.New("sources: no creator statistics files configured")
	}
	return nil
}

// SourcesConfigHolder serves the current sources config and hot-reloads
// it when sources.yml changes between runs.
type SourcesConfigHolder struct {
	current atomic.Value // holds SourcesConfig
}

// NewSourcesConfigHolder reads sources.yml from the configured search
// paths and watches it for changes.
func NewSourcesConfigHolder(appCfg Config) (*SourcesConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("sources")
	v.SetConfigType("yml")
	v.AddConfigPath(appCfg.SourcesPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg SourcesConfig
	if err := v.UnmarshalKey("sources", &cfg); err != nil {
		return nil, err
	}
	if err := validateSourcesConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SourcesConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SourcesConfig
		if err := v.UnmarshalKey("sources", &updated); err != nil {
			log.Printf("[sources-config] reload failed: %v", err)
			return
		}
		if err := validateSourcesConfig(updated); err != nil {
			log.Printf("[sources-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

// Get returns the current sources config.
func (h *SourcesConfigHolder) Get() SourcesConfig {
	return h.current.Load().(SourcesConfig)
}

// Set replaces the current config. Used by tests and one-shot runs that
// bypass the sources.yml file.
func (h *SourcesConfigHolder) Set(cfg SourcesConfig) {
	h.current.Store(cfg)
}

// NewStaticSourcesHolder wraps an in-memory config with no file backing.
func NewStaticSourcesHolder(cfg SourcesConfig) *SourcesConfigHolder {
	holder := &SourcesConfigHolder{}
	holder.current.Store(cfg)
	return holder
}
