package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSettingsDefaultsWithoutFile(t *testing.T) {
	v := viper.New()
	v.SetConfigName("ledger-missing")
	v.AddConfigPath(t.TempDir())

	holder, err := loadLedgerSettings(v, nil, false)
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, "0.01", got.SplitTolerance.String())
	assert.Equal(t, 3, got.CodeGenerationAttempts)
	assert.Equal(t, 2, got.ChildCodeWidth)
}

func TestLedgerSettingsFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
ledger:
  splitTolerance: "0.05"
  codeGenerationAttempts: 5
  childCodeWidth: 3
`)))

	settings, err := decodeLedgerSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "0.05", settings.SplitTolerance.String())
	assert.Equal(t, 5, settings.CodeGenerationAttempts)
	assert.Equal(t, 3, settings.ChildCodeWidth)
}

func TestLedgerSettingsRejectsInvalidValues(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
ledger:
  splitTolerance: "-1"
  codeGenerationAttempts: 3
  childCodeWidth: 2
`)))

	_, err := decodeLedgerSettings(v)
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *LedgerSettingsHolder
	assert.Equal(t, 3, holder.Get().CodeGenerationAttempts)
}
