// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package config

import (
	"fmt"
	"math"
	"regexp"
)

type FWVersion struct {
	major, minor100 int
}

var fwvRE *regexp.Regexp = regexp.MustCompile("^v([0-9]+\\.[0-9]+)$")

func ParseFWVersion(str string) (FWVersion, error) {
	matches := fwvRE.FindStringSubmatch(str)
	if len(matches) != 2 {
		return FWVersion{}, fmt.Errorf("Can't parse: '%s'", str)
	}

	var val float64
	n, err := fmt.Sscanf(matches[1], "%f", &val)
	if n != 1 || err != nil {
		return FWVersion{}, fmt.Errorf("Can't parse: '%s'", str)
	}

	major, minor := math.Modf(val)

	return FWVersion{
		major:    int(math.Floor(major)),
		minor100: int(math.Floor(minor*100 + 0.5)),
	}, nil
}

func (fwv *FWVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseFWVersion(string(text))
	(*fwv) = parsed
	return err
}

func (fwv *FWVersion) MarshalText() ([]byte, error) {
	return []byte(fwv.String()), nil
}

func (fwv FWVersion) Matches(other FWVersion) bool {
	return fwv.major == other.major && fwv.minor100 == other.minor100
}

func (fwv FWVersion) String() string {
	return fmt.Sprintf("v%.2f", float64(fwv.major)+float64(fwv.minor100)/100)
}
