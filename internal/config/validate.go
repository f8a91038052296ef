package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSieve(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSieve() error {
	switch c.Sieve.CommitMethod {
	case "copy", "move", "delete":
	default:
		return fmt.Errorf("sieve.commit_method must be copy, move, or delete (got %q)", c.Sieve.CommitMethod)
	}
	if c.Sieve.SimilarityWindow < 2 {
		return errors.New("sieve.similarity_window must be at least 2")
	}
	if c.Sieve.HashDistance > 64 {
		return errors.New("sieve.hash_distance must be at most 64 (hash width)")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Capacity < 1 {
		return errors.New("cache.capacity must be at least 1")
	}
	if c.Cache.PrefetchWorkers > 32 {
		return errors.New("cache.prefetch_workers must be at most 32")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
