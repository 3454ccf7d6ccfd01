// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/usedbytes/qboot-tools/lib/rbl"
)

func stringIfNotEmpty(prefix, val string) string {
	if len(val) > 0 {
		return fmt.Sprintf("%s %s\n", prefix, val)
	}
	return ""
}

// Package metadata that ends up in the RBL header. The zero-valued
// fields of a loaded config fall back to the defaults, so a config
// file only needs to list what it wants to override.
type Config struct {
	PartName    string            `toml:"part_name,omitempty"`
	FWVersion   *FWVersion        `toml:"fw_version,omitempty"`
	ProductCode string            `toml:"product_code,omitempty"`
	Compress    *rbl.CompressAlgo `toml:"compress,omitempty"`
	Crypt       *rbl.CryptAlgo    `toml:"crypt,omitempty"`
	Verify      *rbl.VerifyAlgo   `toml:"verify,omitempty"`
}

func (c *Config) String() string {
	var s string
	s += "Config:\n"
	s += stringIfNotEmpty("   PartName:", c.PartName)
	if c.FWVersion != nil {
		s += stringIfNotEmpty("   FWVersion:", c.FWVersion.String())
	}
	s += stringIfNotEmpty("   ProductCode:", c.ProductCode)
	if c.Compress != nil {
		s += stringIfNotEmpty("   Compress:", c.Compress.String())
	}
	if c.Crypt != nil {
		s += stringIfNotEmpty("   Crypt:", c.Crypt.String())
	}
	if c.Verify != nil {
		s += stringIfNotEmpty("   Verify:", c.Verify.String())
	}
	return s
}

// Historical values, matching what the original packaging scripts
// hard-coded.
const (
	DefaultPartName    = "app"
	DefaultFWVersion   = "v1.00"
	DefaultProductCode = "00010203040506070809"
)

func DefaultConfig() *Config {
	fwv, _ := ParseFWVersion(DefaultFWVersion)
	compress := rbl.CompressAlgo(rbl.CompressHpatchlite)
	crypt := rbl.CryptAlgo(rbl.CryptNone)
	verify := rbl.VerifyAlgo(rbl.VerifyNone)

	return &Config{
		PartName:    DefaultPartName,
		FWVersion:   &fwv,
		ProductCode: DefaultProductCode,
		Compress:    &compress,
		Crypt:       &crypt,
		Verify:      &verify,
	}
}

// LoadConfig reads a TOML config file, filling in defaults for
// anything it doesn't set.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Decoding config file")
	}

	def := DefaultConfig()
	if len(cfg.PartName) == 0 {
		cfg.PartName = def.PartName
	}
	if cfg.FWVersion == nil {
		cfg.FWVersion = def.FWVersion
	}
	if len(cfg.ProductCode) == 0 {
		cfg.ProductCode = def.ProductCode
	}
	if cfg.Compress == nil {
		cfg.Compress = def.Compress
	}
	if cfg.Crypt == nil {
		cfg.Crypt = def.Crypt
	}
	if cfg.Verify == nil {
		cfg.Verify = def.Verify
	}

	return &cfg, nil
}

// Algo combines the compression and encryption identifiers into the
// header's algo field. The compression ID lives in the high byte,
// encryption in the low byte.
func (c *Config) Algo() uint16 {
	var algo uint16
	if c.Compress != nil {
		algo |= uint16(*c.Compress)
	}
	if c.Crypt != nil {
		algo |= uint16(*c.Crypt)
	}
	return algo
}

// Algo2 is the verification identifier for the header's algo2 field.
func (c *Config) Algo2() uint16 {
	if c.Verify == nil {
		return 0
	}
	return uint16(*c.Verify)
}
