// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package rbl

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// The qboot bootloader expects every update package to start with a
// fixed 96-byte fw_info header. All multi-byte fields are little-endian.
//
// Layout:
//	0x00  type[4]       magic, "RBL\0"
//	0x04  algo          u16, compression/patch-format identifier
//	0x06  algo2         u16, encryption/verification identifier
//	0x08  time_stamp    u32, seconds since epoch
//	0x0c  part_name[16] target partition, NUL padded
//	0x1c  fw_ver[24]    firmware version string, NUL padded
//	0x34  prod_code[24] product identifier, NUL padded
//	0x4c  pkg_crc       u32, CRC32 of the package body
//	0x50  raw_crc       u32, CRC32 of the full new firmware
//	0x54  raw_size      u32, length of the new firmware
//	0x58  pkg_size      u32, length of the package body
//	0x5c  hdr_crc       u32, CRC32 of the 92 bytes above

const (
	typeTag = "RBL\x00"

	partNameLen = 16
	fwVerLen    = 24
	prodCodeLen = 24

	// Offset of hdr_crc, which is also the length it covers
	hdrCRCOffset = 92

	HeaderLen = 96
)

type Header struct {
	Algo        uint16
	Algo2       uint16
	Timestamp   uint32
	PartName    string
	FWVersion   string
	ProductCode string
	PkgCRC      uint32
	RawCRC      uint32
	RawSize     uint32
	PkgSize     uint32
}

// putString encodes s into dst, truncating to len(dst) and padding the
// remainder with NUL bytes. Truncation never splits a multi-byte
// codepoint - the last rune that doesn't fit is dropped entirely, so
// the field always holds valid UTF-8.
func putString(dst []byte, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("not valid UTF-8: '%s'", s)
	}

	b := []byte(s)
	if len(b) > len(dst) {
		end := len(dst)
		for end > 0 && !utf8.RuneStart(b[end]) {
			end--
		}
		b = b[:end]
	}

	n := copy(dst, b)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}

	return nil
}

// Marshal serialises the header. The trailing hdr_crc is always
// recomputed from the serialised fields, so it can't go stale.
func (h *Header) Marshal() ([]byte, error) {
	buf := make([]byte, HeaderLen)

	copy(buf[0:4], typeTag)
	binary.LittleEndian.PutUint16(buf[4:6], h.Algo)
	binary.LittleEndian.PutUint16(buf[6:8], h.Algo2)
	binary.LittleEndian.PutUint32(buf[8:12], h.Timestamp)

	err := putString(buf[12:12+partNameLen], h.PartName)
	if err != nil {
		return nil, errors.Wrap(err, "Encoding partition name")
	}

	err = putString(buf[28:28+fwVerLen], h.FWVersion)
	if err != nil {
		return nil, errors.Wrap(err, "Encoding firmware version")
	}

	err = putString(buf[52:52+prodCodeLen], h.ProductCode)
	if err != nil {
		return nil, errors.Wrap(err, "Encoding product code")
	}

	binary.LittleEndian.PutUint32(buf[76:80], h.PkgCRC)
	binary.LittleEndian.PutUint32(buf[80:84], h.RawCRC)
	binary.LittleEndian.PutUint32(buf[84:88], h.RawSize)
	binary.LittleEndian.PutUint32(buf[88:92], h.PkgSize)

	binary.LittleEndian.PutUint32(buf[hdrCRCOffset:], crc32.ChecksumIEEE(buf[:hdrCRCOffset]))

	return buf, nil
}

// NewHeader fills in a header for the given payloads. rawData is the
// complete new firmware image, pkgData the package body (e.g. a
// hpatchlite patch). The two are independent: the bootloader uses
// raw_crc/raw_size to check the result of applying the package, and
// pkg_crc/pkg_size to check the package itself.
func NewHeader(rawData, pkgData []byte, algo, algo2 uint16, timestamp uint32,
	partName, fwVersion, productCode string) *Header {
	return &Header{
		Algo:        algo,
		Algo2:       algo2,
		Timestamp:   timestamp,
		PartName:    partName,
		FWVersion:   fwVersion,
		ProductCode: productCode,
		PkgCRC:      crc32.ChecksumIEEE(pkgData),
		RawCRC:      crc32.ChecksumIEEE(rawData),
		RawSize:     uint32(len(rawData)),
		PkgSize:     uint32(len(pkgData)),
	}
}

// BuildHeader builds the serialised header for a package in one shot.
// It's a pure function - same inputs give byte-identical output.
func BuildHeader(rawData, pkgData []byte, algo, algo2 uint16, timestamp uint32,
	partName, fwVersion, productCode string) ([]byte, error) {
	return NewHeader(rawData, pkgData, algo, algo2, timestamp,
		partName, fwVersion, productCode).Marshal()
}
