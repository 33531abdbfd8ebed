// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"regexp"
	"strconv"
)

var validityPattern = regexp.MustCompile(`(\d+) (d|days)`)

// AcceptValidity parses a certificate lifetime such as "365 days" or "30 d"
// and returns it in days. Only day units are accepted.
func AcceptValidity(s string) (int, bool) {
	m := validityPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return days, true
}
