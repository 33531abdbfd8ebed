// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import "regexp"

var emailPattern = regexp.MustCompile(`(?i)\A([\w+-].?)+@[a-z\d-]+(\.[a-z]+)*\.[a-z]+\z`)

// AcceptEmail reports whether s looks like a deliverable e-mail address.
func AcceptEmail(s string) bool {
	return emailPattern.MatchString(s)
}
