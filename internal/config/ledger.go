package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LedgerSettings are the bookkeeping knobs that can change without a restart.
type LedgerSettings struct {
	SplitTolerance         decimal.Decimal
	CodeGenerationAttempts int
	ChildCodeWidth         int
}

type ledgerSettingsFile struct {
	SplitTolerance         string `mapstructure:"splitTolerance"`
	CodeGenerationAttempts int    `mapstructure:"codeGenerationAttempts"`
	ChildCodeWidth         int    `mapstructure:"childCodeWidth"`
}

func DefaultLedgerSettings() LedgerSettings {
	return LedgerSettings{
		SplitTolerance:         decimal.RequireFromString("0.01"),
		CodeGenerationAttempts: 3,
		ChildCodeWidth:         2,
	}
}

type LedgerSettingsHolder struct {
	current atomic.Value // holds LedgerSettings
}

// NewLedgerSettingsHolder reads ledger.yml and keeps watching it for edits.
func NewLedgerSettingsHolder(log *zap.Logger) (*LedgerSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("ledger")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bookkeeper")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	return loadLedgerSettings(v, log, true)
}

// NewStaticLedgerSettings returns a holder that never reloads.
func NewStaticLedgerSettings(settings LedgerSettings) *LedgerSettingsHolder {
	holder := &LedgerSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func loadLedgerSettings(v *viper.Viper, log *zap.Logger, watch bool) (*LedgerSettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.ledger")

	v.SetEnvPrefix("BOOKKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLedgerSettings()
	v.SetDefault("ledger.splitTolerance", defaults.SplitTolerance.String())
	v.SetDefault("ledger.codeGenerationAttempts", defaults.CodeGenerationAttempts)
	v.SetDefault("ledger.childCodeWidth", defaults.ChildCodeWidth)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	settings, err := decodeLedgerSettings(v)
	if err != nil {
		return nil, err
	}

	holder := &LedgerSettingsHolder{}
	holder.current.Store(settings)

	if watch && fileFound {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeLedgerSettings(v)
			if err != nil {
				log.Warn("invalid ledger settings ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("ledger settings reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *LedgerSettingsHolder) Get() LedgerSettings {
	if h == nil {
		return DefaultLedgerSettings()
	}
	settings, ok := h.current.Load().(LedgerSettings)
	if !ok {
		return DefaultLedgerSettings()
	}
	return settings
}

func decodeLedgerSettings(v *viper.Viper) (LedgerSettings, error) {
	var raw ledgerSettingsFile
	if err := v.UnmarshalKey("ledger", &raw); err != nil {
		return LedgerSettings{}, err
	}
	tolerance, err := decimal.NewFromString(strings.TrimSpace(raw.SplitTolerance))
	if err != nil {
		return LedgerSettings{}, fmt.Errorf("ledger.splitTolerance: %w", err)
	}
	settings := LedgerSettings{
		SplitTolerance:         tolerance,
		CodeGenerationAttempts: raw.CodeGenerationAttempts,
		ChildCodeWidth:         raw.ChildCodeWidth,
	}
	if err := validateLedgerSettings(settings); err != nil {
		return LedgerSettings{}, err
	}
	return settings, nil
}

func validateLedgerSettings(s LedgerSettings) error {
	if s.SplitTolerance.IsNegative() {
		return errors.New("ledger.splitTolerance cannot be negative")
	}
	if s.CodeGenerationAttempts < 1 {
		return errors.New("ledger.codeGenerationAttempts must be at least 1")
	}
	if s.ChildCodeWidth < 1 {
		return errors.New("ledger.childCodeWidth must be at least 1")
	}
	return nil
}
