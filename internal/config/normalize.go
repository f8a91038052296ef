package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSieve()
	c.normalizeCache()
	c.normalizeWatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SourceDir) != "" {
		if c.Paths.SourceDir, err = ExpandPath(c.Paths.SourceDir); err != nil {
			return fmt.Errorf("paths.source_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.TargetDir) != "" {
		if c.Paths.TargetDir, err = ExpandPath(c.Paths.TargetDir); err != nil {
			return fmt.Errorf("paths.target_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSieve() {
	if c.Sieve.SimilarityWindow <= 0 {
		c.Sieve.SimilarityWindow = defaultSimilarityWindow
	}
	if c.Sieve.HashDistance <= 0 {
		c.Sieve.HashDistance = defaultHashDistance
	}
	c.Sieve.CommitMethod = strings.ToLower(strings.TrimSpace(c.Sieve.CommitMethod))
	if c.Sieve.CommitMethod == "" {
		c.Sieve.CommitMethod = defaultCommitMethod
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = defaultCacheCapacity
	}
	if c.Cache.MaxWidth <= 0 {
		c.Cache.MaxWidth = defaultMaxWidth
	}
	if c.Cache.MaxHeight <= 0 {
		c.Cache.MaxHeight = defaultMaxHeight
	}
	if c.Cache.PrefetchCount < 0 {
		c.Cache.PrefetchCount = defaultPrefetchCount
	}
	if c.Cache.PrefetchWorkers <= 0 {
		c.Cache.PrefetchWorkers = defaultPrefetchWorkers
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.SettleMS <= 0 {
		c.Watch.SettleMS = defaultWatchSettleMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
