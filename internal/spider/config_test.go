package spider

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpiderSettings() *viper.Viper {
	v := viper.New()
	v.Set("spider.user_agent", "harvester/1.0")
	v.Set("spider.concurrency", 4)
	v.Set("spider.delay", "250ms")
	v.Set("spider.request_timeout", "10s")
	v.Set("spider.respect_robots", true)
	v.Set("spider.item_limit", 50)
	v.Set("spider.page_limit", 0)
	v.Set("spider.keep_empty_types", false)
	return v
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(validSpiderSettings())
	require.NoError(t, err)

	assert.Equal(t, "harvester/1.0", cfg.UserAgent)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.RespectRobots)
	assert.Equal(t, 50, cfg.ItemLimit)
	assert.Zero(t, cfg.PageLimit)
	assert.False(t, cfg.KeepEmptyTypes)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing user agent",
			mutate:  func(c *Config) { c.UserAgent = "" },
			wantErr: "user_agent",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Delay = -time.Second },
			wantErr: "delay",
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.RequestTimeout = 0 },
			wantErr: "request_timeout",
		},
		{
			name:    "negative item limit",
			mutate:  func(c *Config) { c.ItemLimit = -1 },
			wantErr: "item_limit",
		},
		{
			name:    "negative page limit",
			mutate:  func(c *Config) { c.PageLimit = -1 },
			wantErr: "page_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				UserAgent:      "harvester/1.0",
				Concurrency:    1,
				Delay:          time.Millisecond,
				RequestTimeout: time.Second,
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
