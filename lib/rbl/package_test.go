// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package rbl

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOutputPath(t *testing.T) {
	for _, c := range []struct {
		in, out string
	}{
		{"light_patch.bin", "light_patch.rbl"},
		{"dir/fw.patch", "dir/fw.rbl"},
		{"noext", "noext.rbl"},
	} {
		if got := DefaultOutputPath(c.in); got != c.out {
			t.Errorf("DefaultOutputPath(%s) = %s, expected %s", c.in, got, c.out)
		}
	}
}

func TestWritePackage(t *testing.T) {
	body := []byte("PATCHDATA")
	hdr, err := BuildHeader([]byte("FIRMWAREDATA"), body, 1024, 0, 1700000000,
		"app", "v1.00", "00010203040506070809")
	if err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	err = WritePackage(buf, hdr, body)
	if err != nil {
		t.Fatal(err)
	}

	if buf.Len() != HeaderLen+len(body) {
		t.Fatalf("package length %d, expected %d", buf.Len(), HeaderLen+len(body))
	}

	if !bytes.Equal(buf.Bytes(), append(append([]byte{}, hdr...), body...)) {
		t.Error("package is not header || body")
	}
}

func TestPackageFileRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "rbl")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	raw := []byte("FIRMWAREDATA")
	body := []byte("PATCHDATA")
	fname := filepath.Join(dir, "patch.rbl")

	err = WritePackageFile(fname, raw, body, 1024, 0, 1700000000,
		"app", "v1.00", "00010203040506070809")
	if err != nil {
		t.Fatal(err)
	}

	hdr, gotBody, err := ReadPackageFile(fname)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(gotBody, body) {
		t.Error("body doesn't round-trip")
	}

	if hdr.PartName != "app" || hdr.Algo != 1024 || hdr.RawSize != uint32(len(raw)) {
		t.Errorf("unexpected header: %s", hdr)
	}
}

func TestWritePackageFileBadMetadata(t *testing.T) {
	dir, err := ioutil.TempDir("", "rbl")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fname := filepath.Join(dir, "patch.rbl")

	// Header build fails, so no output file may exist
	err = WritePackageFile(fname, nil, nil, 0, 0, 0,
		string([]byte{0xff}), "v1.00", "code")
	if err == nil {
		t.Fatal("expected an error for invalid metadata")
	}

	_, err = os.Stat(fname)
	if !os.IsNotExist(err) {
		t.Error("failed build left an output file behind")
	}
}
