package main

import (
	"strings"
	"sync"

	"storyloom/internal/client"
	"storyloom/internal/config"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
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

// apiAddress resolves the daemon address: the --api flag wins, otherwise
// the configured bind address.
func (c *commandContext) apiAddress() (string, error) {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return strings.TrimSpace(*c.apiFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.APIBind, nil
}

func (c *commandContext) client() (*client.Client, error) {
	address, err := c.apiAddress()
	if err != nil {
		return nil, err
	}
	return client.New(address), nil
}
