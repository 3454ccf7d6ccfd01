// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package rbl

import (
	"fmt"
)

// Algorithm identifiers stored in the header's algo/algo2 fields.
// The packer only records them; the bootloader decides what to do
// with the payload based on these values.

type CompressAlgo uint16

const (
	CompressNone       CompressAlgo = 0 << 8
	CompressGzip                    = 1 << 8
	CompressQuicklz                 = 2 << 8
	CompressFastlz                  = 3 << 8
	CompressHpatchlite              = 4 << 8
)

func (c CompressAlgo) String() string {
	switch c {
	case CompressNone:
		return "none"
	case CompressGzip:
		return "gzip"
	case CompressQuicklz:
		return "quicklz"
	case CompressFastlz:
		return "fastlz"
	case CompressHpatchlite:
		return "hpatchlite"
	}

	return fmt.Sprintf("unknown (0x%04x)", uint16(c))
}

func ParseCompressAlgo(str string) (CompressAlgo, error) {
	switch str {
	case "none":
		return CompressNone, nil
	case "gzip":
		return CompressGzip, nil
	case "quicklz":
		return CompressQuicklz, nil
	case "fastlz":
		return CompressFastlz, nil
	case "hpatchlite":
		return CompressHpatchlite, nil
	}

	return CompressNone, fmt.Errorf("unrecognised compression algorithm: '%s'", str)
}

func (c *CompressAlgo) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressAlgo(string(text))
	(*c) = parsed
	return err
}

func (c *CompressAlgo) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CryptAlgo uint16

const (
	CryptNone   CryptAlgo = 0
	CryptXor              = 1
	CryptAes256           = 2
)

func (c CryptAlgo) String() string {
	switch c {
	case CryptNone:
		return "none"
	case CryptXor:
		return "xor"
	case CryptAes256:
		return "aes256"
	}

	return fmt.Sprintf("unknown (0x%04x)", uint16(c))
}

func ParseCryptAlgo(str string) (CryptAlgo, error) {
	switch str {
	case "none":
		return CryptNone, nil
	case "xor":
		return CryptXor, nil
	case "aes256":
		return CryptAes256, nil
	}

	return CryptNone, fmt.Errorf("unrecognised encryption algorithm: '%s'", str)
}

func (c *CryptAlgo) UnmarshalText(text []byte) error {
	parsed, err := ParseCryptAlgo(string(text))
	(*c) = parsed
	return err
}

func (c *CryptAlgo) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type VerifyAlgo uint16

const (
	VerifyNone VerifyAlgo = 0
	VerifyCRC             = 1
)

func (v VerifyAlgo) String() string {
	switch v {
	case VerifyNone:
		return "none"
	case VerifyCRC:
		return "crc"
	}

	return fmt.Sprintf("unknown (0x%04x)", uint16(v))
}

func ParseVerifyAlgo(str string) (VerifyAlgo, error) {
	switch str {
	case "none":
		return VerifyNone, nil
	case "crc":
		return VerifyCRC, nil
	}

	return VerifyNone, fmt.Errorf("unrecognised verify algorithm: '%s'", str)
}

func (v *VerifyAlgo) UnmarshalText(text []byte) error {
	parsed, err := ParseVerifyAlgo(string(text))
	(*v) = parsed
	return err
}

func (v *VerifyAlgo) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
