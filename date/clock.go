// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package date

import "bytes"

// MaxClock is the largest magnitude,
// in seconds, of a TIME value (838:59:59).
const MaxClock = 838*3600 + 59*60 + 59

const secondsPerDay = 24 * 3600

// ParseClock parses a signed duration of the
// form [-]H:MM:SS, where H has between one and
// three digits, and returns it in seconds.
func ParseClock(b []byte) (int32, bool) {
	b = bytes.TrimSpace(b)
	neg := false
	if len(b) > 0 && b[0] == '-' {
		neg = true
		b = b[1:]
	}
	hour, b, ok := digits(b, 1, 3)
	if !ok || len(b) == 0 || b[0] != ':' {
		return 0, false
	}
	min, sec, rest, ok := minsec(b[1:])
	if !ok || len(rest) != 0 {
		return 0, false
	}
	v := hour*3600 + min*60 + sec
	if v > MaxClock {
		return 0, false
	}
	if neg {
		v = -v
	}
	return int32(v), true
}

func minsec(b []byte) (min, sec int, rest []byte, ok bool) {
	min, b, ok = digits(b, 2, 2)
	if !ok || min > 59 || len(b) == 0 || b[0] != ':' {
		return 0, 0, nil, false
	}
	sec, b, ok = digits(b[1:], 2, 2)
	if !ok || sec > 59 {
		return 0, 0, nil, false
	}
	return min, sec, b, true
}

// AppendClock appends the [-]HH:MM:SS
// form of the given number of seconds.
func AppendClock(dst []byte, secs int32) []byte {
	v := int(secs)
	if v < 0 {
		dst = append(dst, '-')
		v = -v
	}
	dst = appendInt(dst, v/3600, 2)
	dst = append(dst, ':')
	dst = appendInt(dst, (v/60)%60, 2)
	dst = append(dst, ':')
	return appendInt(dst, v%60, 2)
}

// ParseDateTime parses a timestamp of the form
// YYYY-MM-DD[( |T)HH:MM:SS] and returns the
// number of seconds since the Unix epoch.
func ParseDateTime(b []byte) (int64, bool) {
	b = bytes.TrimSpace(b)
	days, b, ok := parseDate(b)
	if !ok {
		return 0, false
	}
	out := int64(days) * secondsPerDay
	if len(b) == 0 {
		return out, true
	}
	if b[0] != ' ' && b[0] != 'T' {
		return 0, false
	}
	hour, b, ok := digits(b[1:], 2, 2)
	if !ok || hour > 23 || len(b) == 0 || b[0] != ':' {
		return 0, false
	}
	min, sec, rest, ok := minsec(b[1:])
	if !ok || len(rest) != 0 {
		return 0, false
	}
	return out + int64(hour*3600+min*60+sec), true
}

// AppendDateTime appends the YYYY-MM-DD HH:MM:SS
// form of the given Unix time in seconds.
func AppendDateTime(dst []byte, secs int64) []byte {
	days := floordiv(secs, secondsPerDay)
	tod := int(secs - days*secondsPerDay)
	dst = AppendDate(dst, int32(days))
	dst = append(dst, ' ')
	dst = appendInt(dst, tod/3600, 2)
	dst = append(dst, ':')
	dst = appendInt(dst, (tod/60)%60, 2)
	dst = append(dst, ':')
	return appendInt(dst, tod%60, 2)
}

// SplitDateTime splits a Unix time in seconds
// into its day number and its time of day.
func SplitDateTime(secs int64) (days int32, clock int32) {
	d := floordiv(secs, secondsPerDay)
	return int32(d), int32(secs - d*secondsPerDay)
}
