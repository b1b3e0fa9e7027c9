package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Config is the bot's runtime configuration. It is loaded once at startup and
// never reloaded for the life of the process.
type Config struct {
	PublicChannelID string
	StaffChannelID  string
	AdminRoleID     string
	SigningSecret   string
}

// LoadConfig reads the channel, role and signing-secret parameters stored
// under the given prefix.
func LoadConfig(ctx context.Context, g Getter, prefix string) (Config, error) {
	if g == nil {
		return Config{}, errors.New("paramstore: getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return Config{}, errors.New("paramstore: parameter prefix must not be empty")
	}

	var cfg Config
	for _, p := range []struct {
		name string
		dst  *string
	}{
		{prefix + "/public_channel", &cfg.PublicChannelID},
		{prefix + "/staff_channel", &cfg.StaffChannelID},
		{prefix + "/admin_role", &cfg.AdminRoleID},
		{prefix + "/signing_secret", &cfg.SigningSecret},
	} {
		v, err := g.GetParameter(ctx, p.name)
		if err != nil {
			return Config{}, fmt.Errorf("paramstore: load config: %w", err)
		}
		if strings.TrimSpace(v) == "" {
			return Config{}, fmt.Errorf("paramstore: load config: parameter %q is empty", p.name)
		}
		*p.dst = v
	}
	return cfg, nil
}
