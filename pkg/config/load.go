package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overlaid by Load.
const (
	EnvRPCAddr             = "FIZZ_RPC_ADDR"
	EnvWSAddr              = "FIZZ_WS_ADDR"
	EnvPrivateKey          = "FIZZ_PRIVATE_KEY"
	EnvAccount             = "FIZZ_ACCOUNT"
	EnvChainID             = "FIZZ_CHAIN_ID"
	EnvDebug               = "FIZZ_DEBUG"
	EnvFizzRegistry        = "FIZZ_REGISTRY_ADDR"
	EnvResourceRegistryCPU = "FIZZ_RESOURCE_CPU_ADDR"
	EnvResourceRegistryGPU = "FIZZ_RESOURCE_GPU_ADDR"
	EnvComputeLease        = "FIZZ_COMPUTE_LEASE_ADDR"
	EnvProviderRegistry    = "FIZZ_PROVIDER_REGISTRY_ADDR"
	EnvEventWait           = "FIZZ_EVENT_WAIT"
)

// Load reads the YAML file at path (skipped when path is empty), loads a
// .env file from the working directory if one exists, overlays the FIZZ_*
// environment variables and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvRPCAddr:             &c.RPCAddr,
		EnvWSAddr:              &c.WSAddr,
		EnvPrivateKey:          &c.PrivateKey,
		EnvAccount:             &c.Account,
		EnvChainID:             &c.Network.ChainID,
		EnvFizzRegistry:        &c.Contracts.FizzRegistry,
		EnvResourceRegistryCPU: &c.Contracts.ResourceRegistryCPU,
		EnvResourceRegistryGPU: &c.Contracts.ResourceRegistryGPU,
		EnvComputeLease:        &c.Contracts.ComputeLease,
		EnvProviderRegistry:    &c.Contracts.ProviderRegistry,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	if v, ok := lookup(EnvEventWait); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvEventWait, err)
		}
		c.Timeouts.EventWait = d
	}
	return nil
}
