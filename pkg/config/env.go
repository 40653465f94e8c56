package config

import (
	"strconv"
	"strings"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KGVIEW_"

type lookupFunc func(string) (string, bool)

// applyEnv overlays KGVIEW_* variables onto c.
func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
		}
		return nil
	}

	str("API_BASE_URL", &c.API.BaseURL)
	str("API_TOKEN", &c.API.Token)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	str("SNAPSHOT_BACKEND", &c.Snapshot.Backend)
	str("MONGO_URI", &c.Snapshot.MongoURI)
	str("SERVER_ADDR", &c.Server.Addr)
	str("TIMESTAMP_LAYOUT", &c.Format.TimestampLayout)
	str("TIMEZONE", &c.Format.Timezone)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "UNITS"); ok {
		c.Format.Units = strings.Split(v, ",")
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "%sREDIS_DB", EnvPrefix)
		}
		c.Cache.Redis.DB = n
	}

	for name, dst := range map[string]*Duration{
		"API_TIMEOUT": &c.API.Timeout,
		"CACHE_TTL":   &c.Cache.TTL,
		"DEBOUNCE":    &c.Watch.Debounce,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}
	return nil
}
