package ldap

import (
	"fmt"

	"github.com/creasty/defaults"
)

// MapperConfig places users and groups in the directory tree.
type MapperConfig struct {
	// BaseDN is the root of the tree, e.g. "dc=example,dc=com". Required.
	BaseDN string `json:"base_dn"`

	// UserOU is the organizational unit holding users.
	UserOU string `json:"user_ou,omitempty" default:"people"`

	// GroupOU is the organizational unit holding groups.
	GroupOU string `json:"group_ou,omitempty" default:"groups"`

	// PhotoAttribute names the user schema attribute exposed as jpegPhoto.
	PhotoAttribute string `json:"photo_attribute,omitempty" default:"avatar"`
}

// NewMapperConfig returns the default configuration rooted at baseDN.
func NewMapperConfig(baseDN string) (MapperConfig, error) {
	cfg := MapperConfig{BaseDN: baseDN}
	if err := defaults.Set(&cfg); err != nil {
		return MapperConfig{}, fmt.Errorf("failed to set default values: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration describes a usable tree.
func (c MapperConfig) Validate() error {
	if err := ValidateDNSyntax(c.BaseDN); err != nil {
		return fmt.Errorf("base_dn: %w", err)
	}
	if c.UserOU == "" {
		return fmt.Errorf("user_ou cannot be empty")
	}
	if c.GroupOU == "" {
		return fmt.Errorf("group_ou cannot be empty")
	}
	if c.UserOU == c.GroupOU {
		return fmt.Errorf("user_ou and group_ou must differ, both are %q", c.UserOU)
	}
	return nil
}
