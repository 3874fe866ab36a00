package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/flohusson/attitude-emoi/internal/di"
	"github.com/flohusson/attitude-emoi/internal/runtimeconfig"
)

const defaultConfigPath = "attitude.toml"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     runtimeconfig.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (runtimeconfig.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := runtimeconfig.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withContainer builds the container, subscribes its handlers to the
// dispatcher for the duration of fn and closes everything afterwards. Logs go
// to logs so command output stays parseable.
func (c *commandContext) withContainer(ctx context.Context, logs io.Writer, fn func(*di.Container) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	reg := di.NewDispatcherRegistry()
	defer reg.Close()

	container, err := di.NewContainer(ctx, cfg,
		di.WithLogWriter(logs),
		di.WithCommandRegistry(reg),
	)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, container.Close())
	}()
	return fn(container)
}
