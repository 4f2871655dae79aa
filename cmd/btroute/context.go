package main

import (
	"fmt"
	"strings"
	"sync"

	"btroute/internal/config"
	"btroute/internal/ipc"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) socketPath() (string, error) {
	if c.socketFlag != nil {
		if path := strings.TrimSpace(*c.socketFlag); path != "" {
			return path, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.SocketPath, nil
}

// dial connects to the daemon socket, translating connection refusal into a
// friendlier message.
func (c *commandContext) dial() (*ipc.Client, error) {
	path, err := c.socketPath()
	if err != nil {
		return nil, err
	}
	client, err := ipc.Dial(path)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s (is btrouted running?): %w", path, err)
	}
	return client, nil
}
