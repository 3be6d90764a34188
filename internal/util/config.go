package util

import (
	"time"

	"github.com/spf13/viper"
)

// Season returns the configured season year, defaulting to the current year
func Season() int {
	season := viper.GetInt("season")
	if season == 0 {
		season = time.Now().Year()
	}
	return season
}

// UserAgent returns the User-Agent header for outbound requests.
// Club sites tend to reject the default Go client string.
func UserAgent() string {
	if ua := viper.GetString("user_agent"); ua != "" {
		return ua
	}
	return "roster-scout/1.0 (+https://github.com/franz/roster-scout)"
}

// RateLimit returns the minimum delay between requests to the same host
func RateLimit() time.Duration {
	ms := viper.GetInt("rate_limit_ms")
	if ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}

// SourceRanks returns configured overrides for source precedence ranks
func SourceRanks() map[string]int {
	raw := viper.GetStringMap("sources.ranks")
	if len(raw) == 0 {
		return nil
	}
	ranks := make(map[string]int, len(raw))
	for source := range raw {
		ranks[source] = viper.GetInt("sources.ranks." + source)
	}
	return ranks
}
