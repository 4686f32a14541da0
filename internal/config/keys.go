package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "auth.base_url", typ: kString, env: "DOCSAGE_AUTH_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Auth.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.BaseURL },
	},
	{
		key: "files.base_url", typ: kString, env: "DOCSAGE_FILES_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Files.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Files.BaseURL },
	},
	{
		key: "history.base_url", typ: kString, env: "DOCSAGE_HISTORY_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.History.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.History.BaseURL },
	},
	{
		key: "orchestrator.base_url", typ: kString, env: "DOCSAGE_ORCHESTRATOR_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Orchestrator.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Orchestrator.BaseURL },
	},
	{
		key: "gateway.port", typ: kInt, env: "DOCSAGE_GATEWAY_PORT",
		apply:   func(cfg *Config, v any) { cfg.Gateway.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Gateway.Port },
	},
	{
		key: "gateway.token", typ: kString, env: "DOCSAGE_GATEWAY_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Gateway.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Gateway.Token },
	},
	{
		key: "client.fanout_limit", typ: kInt, env: "DOCSAGE_CLIENT_FANOUT_LIMIT",
		apply:   func(cfg *Config, v any) { cfg.Client.FanOutLimit = v.(int) },
		extract: func(cfg Config) any { return cfg.Client.FanOutLimit },
	},
	{
		key: "client.top_k", typ: kInt, env: "DOCSAGE_CLIENT_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Client.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Client.TopK },
	},
	{
		key: "log.level", typ: kString, env: "DOCSAGE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
