package config

import (
	"os"
	"strconv"
	"time"
)

type ConfigStruct struct {
	Options  Options
	Upstream UpstreamConfig
	Cache    CacheConfig
}

type Options struct {
	Port string
}

type UpstreamConfig struct {
	Endpoint    string
	BearerToken string
	Locale      string
	Retries     int
	// Persisted-query hashes keyed by operation name. The upstream owns
	// these and rotates them without notice; override via env when a
	// deployment starts failing with PersistedQueryNotFound.
	QueryHashes map[string]string
}

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
	DBPath     string // empty disables the persistent tier
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Options: Options{
			Port: os.Getenv("PORT"),
		},
		Upstream: UpstreamConfig{
			Endpoint:    getEnvDefault("PARTNER_ENDPOINT", "https://api-partner.spotify.com/pathfinder/v1/query"),
			BearerToken: os.Getenv("PARTNER_BEARER_TOKEN"),
			Locale:      getEnvDefault("PARTNER_LOCALE", "en"),
			Retries:     getRetries(),
			QueryHashes: map[string]string{
				"getTrack":      getEnvDefault("HASH_GET_TRACK", "612585ae06ba435ad26369870deaae23b5c8800a256cd8a57e08eddc25a37294"),
				"getAlbum":      getEnvDefault("HASH_GET_ALBUM", "b9bfabef66ed756e5e13f68a942deb60bd4125ec1f1be8cc42769dc0259b4b10"),
				"fetchPlaylist": getEnvDefault("HASH_FETCH_PLAYLIST", "bb67e0af06e8d6f52b531f97468ee4acd44cd0f82b988e15c2ea47b1148efc77"),
			},
		},
		Cache: CacheConfig{
			TTL:        getCacheTTL(),
			MaxEntries: getCacheMaxEntries(),
			DBPath:     os.Getenv("CACHE_DB_PATH"),
		},
	}

	Config = config
}

func getEnvDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func getCacheTTL() time.Duration {
	ttlStr := os.Getenv("CACHE_TTL_SECONDS")
	if ttlStr == "" {
		return time.Hour
	}
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil || ttl <= 0 {
		return time.Hour
	}
	return time.Duration(ttl) * time.Second
}

func getCacheMaxEntries() int {
	maxStr := os.Getenv("CACHE_MAX_ENTRIES")
	if maxStr == "" {
		return 100
	}
	maxEntries, err := strconv.Atoi(maxStr)
	if err != nil || maxEntries <= 0 {
		return 100
	}
	return maxEntries
}

func getRetries() int {
	retriesStr := os.Getenv("PARTNER_RETRIES")
	if retriesStr == "" {
		return 3
	}
	retries, err := strconv.Atoi(retriesStr)
	if err != nil || retries < 0 {
		return 3
	}
	if retries > 10 {
		return 10 // Cap to keep worst-case latency bounded
	}
	return retries
}
