// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package rbl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"time"
)

func readString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// ParseHeader decodes a serialised header, checking the magic and
// hdr_crc on the way. The payload CRCs are not checked here - the
// caller has to decide whether it has the body and/or the raw image
// to check them against (see VerifyBody).
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderLen {
		return nil, fmt.Errorf("Short header: %d bytes, need %d", len(buf), HeaderLen)
	}

	if !bytes.Equal(buf[0:4], []byte(typeTag)) {
		return nil, fmt.Errorf("Bad magic: % 02x", buf[0:4])
	}

	stored := binary.LittleEndian.Uint32(buf[hdrCRCOffset:HeaderLen])
	calc := crc32.ChecksumIEEE(buf[:hdrCRCOffset])
	if stored != calc {
		return nil, fmt.Errorf("Header CRC mismatch: stored 0x%08x, calculated 0x%08x", stored, calc)
	}

	hdr := &Header{
		Algo:        binary.LittleEndian.Uint16(buf[4:6]),
		Algo2:       binary.LittleEndian.Uint16(buf[6:8]),
		Timestamp:   binary.LittleEndian.Uint32(buf[8:12]),
		PartName:    readString(buf[12 : 12+partNameLen]),
		FWVersion:   readString(buf[28 : 28+fwVerLen]),
		ProductCode: readString(buf[52 : 52+prodCodeLen]),
		PkgCRC:      binary.LittleEndian.Uint32(buf[76:80]),
		RawCRC:      binary.LittleEndian.Uint32(buf[80:84]),
		RawSize:     binary.LittleEndian.Uint32(buf[84:88]),
		PkgSize:     binary.LittleEndian.Uint32(buf[88:92]),
	}

	return hdr, nil
}

// VerifyBody checks the package body against the pkg_crc/pkg_size
// recorded in the header.
func (h *Header) VerifyBody(body []byte) error {
	if uint32(len(body)) != h.PkgSize {
		return fmt.Errorf("Body size mismatch: got %d bytes, header says %d", len(body), h.PkgSize)
	}

	calc := crc32.ChecksumIEEE(body)
	if calc != h.PkgCRC {
		return fmt.Errorf("Body CRC mismatch: calculated 0x%08x, header says 0x%08x", calc, h.PkgCRC)
	}

	return nil
}

func (h Header) String() string {
	str := ""
	str += fmt.Sprintf("Partition:        %s\n", h.PartName)
	str += fmt.Sprintf("Firmware version: %s\n", h.FWVersion)
	str += fmt.Sprintf("Product code:     %s\n", h.ProductCode)
	str += fmt.Sprintf("Algo:             %s / %s (0x%04x)\n",
		CompressAlgo(h.Algo&0xff00), CryptAlgo(h.Algo&0x00ff), h.Algo)
	str += fmt.Sprintf("Algo2:            %s (0x%04x)\n", VerifyAlgo(h.Algo2), h.Algo2)
	str += fmt.Sprintf("Timestamp:        %s\n", time.Unix(int64(h.Timestamp), 0).UTC().Format(time.RFC3339))
	str += fmt.Sprintf("Package:          %d bytes, CRC 0x%08x\n", h.PkgSize, h.PkgCRC)
	str += fmt.Sprintf("Raw firmware:     %d bytes, CRC 0x%08x", h.RawSize, h.RawCRC)
	return str
}
