// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package duration parses human-written intervals like "10 minutes" or
// "365 days" used for poll intervals and renewal margins.
//
// Only the form "<digits> <unit>" is recognized, where unit is one of
// ms, milliseconds, s, seconds, m, minutes, h, hours, d or days. A failed
// parse is reported as absence, never as a zero value.
package duration
