package main

import (
	"strings"
	"sync"

	"lessonforge/internal/client"
	"lessonforge/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
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

// apiClient builds a daemon client from the --server flag or the configured
// bind address.
func (c *commandContext) apiClient() (*client.Client, error) {
	bind := ""
	token := ""
	if c.serverFlag != nil {
		bind = strings.TrimSpace(*c.serverFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		if bind == "" {
			bind = cfg.Paths.APIBind
		}
		token = cfg.Paths.APIToken
	}

	api, err := client.New(bind, token)
	if err != nil {
		return nil, err
	}
	if api == nil {
		return nil, client.ErrAPIUnavailable
	}
	return api, nil
}

func (c *commandContext) withClient(fn func(*client.Client) error) error {
	api, err := c.apiClient()
	if err != nil {
		return err
	}
	err = fn(api)
	if client.IsAPIUnavailable(err) {
		return daemonNotRunningError(err)
	}
	return err
}
