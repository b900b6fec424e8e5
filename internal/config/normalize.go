package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)

	c.Providers.Content.APIKey = strings.TrimSpace(c.Providers.Content.APIKey)
	c.Providers.Content.BaseURL = strings.TrimSpace(c.Providers.Content.BaseURL)
	c.Providers.Content.Model = strings.TrimSpace(c.Providers.Content.Model)
	for i, raw := range c.Providers.Content.FallbackBaseURLs {
		c.Providers.Content.FallbackBaseURLs[i] = strings.TrimSpace(raw)
	}
	c.Providers.Speech.APIKey = strings.TrimSpace(c.Providers.Speech.APIKey)
	c.Providers.Speech.BaseURL = strings.TrimSpace(c.Providers.Speech.BaseURL)
	c.Providers.Avatar.APIKey = strings.TrimSpace(c.Providers.Avatar.APIKey)
	c.Providers.Avatar.BaseURL = strings.TrimSpace(c.Providers.Avatar.BaseURL)
	c.Providers.Render.APIKey = strings.TrimSpace(c.Providers.Render.APIKey)
	c.Providers.Render.BaseURL = strings.TrimSpace(c.Providers.Render.BaseURL)

	c.Research.APIKey = strings.TrimSpace(c.Research.APIKey)
	c.Research.BaseURL = strings.TrimSpace(c.Research.BaseURL)

	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	c.Workflow.DefaultNativeLanguage = strings.TrimSpace(c.Workflow.DefaultNativeLanguage)

	return nil
}
