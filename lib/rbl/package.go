// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package rbl

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PackageExt is the conventional extension for RBL update packages.
const PackageExt = ".rbl"

// DefaultOutputPath derives the output filename from the package body
// filename, e.g. "light_patch.bin" -> "light_patch.rbl".
func DefaultOutputPath(bodyPath string) string {
	return strings.TrimSuffix(bodyPath, filepath.Ext(bodyPath)) + PackageExt
}

// WritePackage writes a complete package: the serialised header
// immediately followed by the body bytes, no further framing.
func WritePackage(w io.Writer, hdr, body []byte) error {
	_, err := w.Write(hdr)
	if err != nil {
		return errors.Wrap(err, "Writing header")
	}

	_, err = w.Write(body)
	if err != nil {
		return errors.Wrap(err, "Writing package body")
	}

	return nil
}

// WritePackageFile builds the header for the given payloads and writes
// the package to filename. The file is only created once the header
// has been fully built, so a failed build never leaves a partial
// output behind.
func WritePackageFile(filename string, rawData, pkgData []byte, algo, algo2 uint16,
	timestamp uint32, partName, fwVersion, productCode string) error {
	hdr, err := BuildHeader(rawData, pkgData, algo, algo2, timestamp,
		partName, fwVersion, productCode)
	if err != nil {
		return errors.Wrap(err, "Building header")
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "Creating output file")
	}
	defer f.Close()

	err = WritePackage(f, hdr, pkgData)
	if err != nil {
		return err
	}

	return f.Close()
}

// ReadPackageFile loads a package file and splits it into its decoded
// header and body, checking the header and body CRCs.
func ReadPackageFile(filename string) (*Header, []byte, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Reading package file")
	}

	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Parsing header")
	}

	body := data[HeaderLen:]
	err = hdr.VerifyBody(body)
	if err != nil {
		return nil, nil, err
	}

	return hdr, body, nil
}
