package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"imagesieve/internal/config"
	"imagesieve/internal/logging"
	"imagesieve/internal/project"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once, writing to the configured
// log directory so command output stays clean.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		file, err := logging.OpenLogFile(filepath.Join(cfg.Paths.LogDir, "imagesieve.log"))
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: file,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) projectStore() (*project.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return project.NewStore(cfg.ProjectsDir(), logger), nil
}

// saveSettings persists the effective configuration back to the file it was
// loaded from, so directory and method choices stick for the next run.
func (c *commandContext) saveSettings() error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.configPath) == "" {
		return nil
	}
	if err := cfg.Save(c.configPath); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// resolveDir turns an optional positional argument into the scan directory,
// falling back to the configured source directory.
func (c *commandContext) resolveDir(args []string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	raw := cfg.Paths.SourceDir
	if len(args) > 0 {
		raw = args[0]
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("no directory given and paths.source_dir is not configured")
	}
	expanded, err := config.ExpandPath(raw)
	if err != nil {
		return "", err
	}
	return expanded, nil
}
