package config

import (
	"errors"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// Secret names accepted by SetSecret and DeleteSecret. Each maps onto one
// credential field of Config.
const (
	SecretPageSpeed = "pagespeed"
	SecretPageRank  = "pagerank"
	SecretNotion    = "notion"
	SecretWebhook   = "webhook"
)

// SecretNames lists the keyring accounts in display order.
func SecretNames() []string {
	return []string{SecretPageSpeed, SecretPageRank, SecretNotion, SecretWebhook}
}

// FillSecrets copies keyring values into credential fields that config and
// environment left empty. A missing entry leaves the field empty.
func FillSecrets(cfg *Config) {
	targets := map[string]*string{
		SecretPageSpeed: &cfg.PageSpeed.Key,
		SecretPageRank:  &cfg.PageRank.Key,
		SecretNotion:    &cfg.Notion.Token,
		SecretWebhook:   &cfg.Forward.WebhookURL,
	}
	for name, dst := range targets {
		if strings.TrimSpace(*dst) != "" {
			continue
		}
		val, err := keyring.Get(AppName, name)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) {
				zap.L().Debug("config: keyring unavailable", zap.String("secret", name), zap.Error(err))
			}
			continue
		}
		*dst = strings.TrimSpace(val)
	}
}

// SetSecret stores value in the OS keyring under name.
func SetSecret(name, value string) error {
	if !slices.Contains(SecretNames(), name) {
		return eris.Errorf("config: unknown secret %q", name)
	}
	if strings.TrimSpace(value) == "" {
		return eris.New("config: secret value is empty")
	}
	if err := keyring.Set(AppName, name, value); err != nil {
		return eris.Wrapf(err, "config: store secret %s", name)
	}
	return nil
}

// DeleteSecret removes name from the OS keyring. Deleting an absent entry is
// not an error.
func DeleteSecret(name string) error {
	if !slices.Contains(SecretNames(), name) {
		return eris.Errorf("config: unknown secret %q", name)
	}
	if err := keyring.Delete(AppName, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return eris.Wrapf(err, "config: delete secret %s", name)
	}
	return nil
}
