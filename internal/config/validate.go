package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateResearch(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.Providers.Content.BaseURL == "" {
		return errors.New("providers.content.base_url must be set")
	}
	if c.Providers.Content.Model == "" {
		return errors.New("providers.content.model must be set")
	}
	if c.Providers.Speech.BaseURL == "" {
		return errors.New("providers.speech.base_url must be set")
	}
	if c.Providers.Avatar.BaseURL == "" {
		return errors.New("providers.avatar.base_url must be set")
	}
	if c.Providers.Render.BaseURL == "" {
		return errors.New("providers.render.base_url must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"providers.content.timeout_seconds":  c.Providers.Content.TimeoutSeconds,
		"providers.speech.timeout_seconds":   c.Providers.Speech.TimeoutSeconds,
		"providers.avatar.timeout_seconds":   c.Providers.Avatar.TimeoutSeconds,
		"providers.render.timeout_seconds":   c.Providers.Render.TimeoutSeconds,
		"providers.avatar.poll_initial_ms":   c.Providers.Avatar.PollInitialMs,
		"providers.avatar.poll_max_ms":       c.Providers.Avatar.PollMaxMs,
		"providers.avatar.poll_max_attempts": c.Providers.Avatar.PollMaxAttempts,
		"providers.render.poll_interval_ms":  c.Providers.Render.PollIntervalMs,
		"providers.render.poll_max_attempts": c.Providers.Render.PollMaxAttempts,
		"notifications.request_timeout":      c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Providers.Avatar.PollGrowth < 1 {
		return errors.New("providers.avatar.poll_growth must be at least 1")
	}
	for name, value := range map[string]int{
		"providers.content.max_retries": c.Providers.Content.MaxRetries,
		"providers.speech.max_retries":  c.Providers.Speech.MaxRetries,
		"providers.avatar.max_retries":  c.Providers.Avatar.MaxRetries,
		"providers.render.max_retries":  c.Providers.Render.MaxRetries,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateResearch() error {
	if !c.Research.Enabled {
		return nil
	}
	if c.Research.APIKey == "" {
		return errors.New("research.api_key must be set when research.enabled is true")
	}
	if c.Research.MaxCharsPerSource <= 0 {
		return errors.New("research.max_chars_per_source must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set when storage.enabled is true")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	if c.Storage.PresignHours <= 0 {
		return errors.New("storage.presign_hours must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.DefaultNativeLanguage == "" {
		return nil
	}
	if _, err := language.Parse(c.Workflow.DefaultNativeLanguage); err != nil {
		return fmt.Errorf("workflow.default_native_language %q is not a valid language tag: %w",
			c.Workflow.DefaultNativeLanguage, err)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
