// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants the server needs before it starts accepting connections.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.RemoteStorageKeyHex == "" || cfg.App.OpaqueServerSetupPath == "" || cfg.App.SessionExpiration == 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.GRPCAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
