package util

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSeasonDefault(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if got := Season(); got != time.Now().Year() {
		t.Errorf("Season() = %d, want current year %d", got, time.Now().Year())
	}

	viper.Set("season", 2026)
	if got := Season(); got != 2026 {
		t.Errorf("Season() = %d, want 2026", got)
	}
}

func TestRateLimit(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if got := RateLimit(); got != time.Second {
		t.Errorf("default RateLimit() = %v, want 1s", got)
	}

	viper.Set("rate_limit_ms", 250)
	if got := RateLimit(); got != 250*time.Millisecond {
		t.Errorf("RateLimit() = %v, want 250ms", got)
	}

	viper.Set("rate_limit_ms", -5)
	if got := RateLimit(); got != time.Second {
		t.Errorf("negative RateLimit() = %v, want fallback 1s", got)
	}
}

func TestSourceRanks(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if got := SourceRanks(); got != nil {
		t.Errorf("SourceRanks() with no config = %v, want nil", got)
	}

	viper.Set("sources.ranks.wikipedia", 45)
	viper.Set("sources.ranks.club_site", 95)

	ranks := SourceRanks()
	if ranks["wikipedia"] != 45 {
		t.Errorf("ranks[wikipedia] = %d, want 45", ranks["wikipedia"])
	}
	if ranks["club_site"] != 95 {
		t.Errorf("ranks[club_site] = %d, want 95", ranks["club_site"])
	}
}
