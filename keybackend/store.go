package keybackend

import (
	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// KeysConfig holds configuration for loading verification keys.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to JSON or YAML file containing key pairs
}

// NewSecretStore creates a SecretStore from cfg and the settings of every
// configured destination.
//
// Precedence, lowest first: destination credentials, inline keys, file keys.
// A later source overrides an earlier one for the same access key.
func NewSecretStore(cfg KeysConfig, destinations ...map[string]string) (*MapSecretStore, error) {
	keys := make(map[string]string)

	for _, settings := range destinations {
		ak, sk := settings[s3component.SettingAccessKey], settings[s3component.SettingSecretKey]
		if ak != "" && sk != "" {
			keys[ak] = sk
		}
	}

	for _, p := range cfg.Inline {
		if p.AccessKey != "" && p.SecretKey != "" {
			keys[p.AccessKey] = p.SecretKey
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileKeys {
			keys[k] = v
		}
	}

	return NewMapSecretStore(keys), nil
}
