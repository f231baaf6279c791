// Package spider implements the concurrent page crawler and the
// HTML-side normalization rules.
package spider

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a crawl stage. Values
// originate from Viper so the spider can be configured via files, env
// vars, or CLI flags.
type Config struct {
	UserAgent      string
	Concurrency    int
	Delay          time.Duration
	RequestTimeout time.Duration
	RespectRobots  bool
	ItemLimit      int
	PageLimit      int
	KeepEmptyTypes bool
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		UserAgent:      v.GetString("spider.user_agent"),
		Concurrency:    v.GetInt("spider.concurrency"),
		Delay:          v.GetDuration("spider.delay"),
		RequestTimeout: v.GetDuration("spider.request_timeout"),
		RespectRobots:  v.GetBool("spider.respect_robots"),
		ItemLimit:      v.GetInt("spider.item_limit"),
		PageLimit:      v.GetInt("spider.page_limit"),
		KeepEmptyTypes: v.GetBool("spider.keep_empty_types"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations. Zero
// limits mean unlimited.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("spider.user_agent must be set")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("spider.concurrency must be > 0")
	}
	if c.Delay < 0 {
		return fmt.Errorf("spider.delay must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("spider.request_timeout must be > 0")
	}
	if c.ItemLimit < 0 {
		return fmt.Errorf("spider.item_limit must be >= 0")
	}
	if c.PageLimit < 0 {
		return fmt.Errorf("spider.page_limit must be >= 0")
	}
	return nil
}
