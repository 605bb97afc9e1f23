package main

import (
	"io"
	"os"
	"strings"
	"sync"

	stdlogger "daily-feed/infrastructure/logger/standard"
	"daily-feed/pkg/config"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	// logOutput is swapped in tests
	logOutput io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		logOutput:  os.Stderr,
	}
}

// ensureConfig loads the configuration file once. Without -c the built-in
// default configuration is used.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			cfg := config.Default()
			config.ApplyEnv(cfg)
			cfg.Normalize()
			c.config, c.configErr = cfg, cfg.Validate()
			return
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// logger honours -v over the configured level
func (c *commandContext) logger(cfg *config.Config) *stdlogger.StandardLogger {
	level := config.DefaultLogLevel
	if cfg != nil {
		level = cfg.LogLevel
	}
	if c.verbose != nil && *c.verbose {
		level = "debug"
	}
	return stdlogger.New(c.logOutput, level)
}
