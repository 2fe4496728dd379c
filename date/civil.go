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

// Package date implements the calendar
// arithmetic behind the DATE, TIME and DATETIME
// SQL types: day numbers relative to the Unix
// epoch, signed clock durations, and the
// textual forms of each.
package date

import (
	"bytes"
	"strconv"
)

// MinYear and MaxYear bound the years
// accepted by the parsing and validation
// routines in this package.
const (
	MinYear = 0
	MaxYear = 9999
)

var monthdays = [12]int{
	31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
}

func isleap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// appendInt appends x to b, zero-padded
// to at least width digits.
func appendInt(b []byte, x int, width int) []byte {
	if x < 0 {
		b = append(b, '-')
		x = -x
	}
	n := 1
	for p := 10; p <= x; p *= 10 {
		n++
	}
	for ; n < width; n++ {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, int64(x), 10)
}

func daysin(y, m int) int {
	d := monthdays[m-1]
	if m == 2 && isleap(y) {
		d++
	}
	return d
}

// Valid returns whether year, month and day
// name an existing calendar day in [MinYear, MaxYear].
func Valid(year, month, day int) bool {
	if year < MinYear || year > MaxYear || month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysin(year, month)
}

// DaysFromCivil returns the number of days between
// 1970-01-01 and the given proleptic Gregorian date.
func DaysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := floordiv(y, 400)
	yoe := y - era*400
	m := int64(month)
	if m > 2 {
		m -= 3
	} else {
		m += 9
	}
	doy := (153*m+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// CivilFromDays is the inverse of DaysFromCivil.
func CivilFromDays(days int64) (year, month, day int) {
	z := days + 719468
	era := floordiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

func floordiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseDate parses a date of the form
// YYYY-MM-DD (month and day may have one
// digit) and returns its day number.
// Leading and trailing spaces are ignored.
func ParseDate(b []byte) (int32, bool) {
	b = bytes.TrimSpace(b)
	days, rest, ok := parseDate(b)
	if !ok || len(rest) != 0 {
		return 0, false
	}
	return days, true
}

func parseDate(b []byte) (int32, []byte, bool) {
	year, b, ok := digits(b, 4, 4)
	if !ok || len(b) == 0 || b[0] != '-' {
		return 0, nil, false
	}
	month, b, ok := digits(b[1:], 1, 2)
	if !ok || len(b) == 0 || b[0] != '-' {
		return 0, nil, false
	}
	day, b, ok := digits(b[1:], 1, 2)
	if !ok || !Valid(year, month, day) {
		return 0, nil, false
	}
	return int32(DaysFromCivil(year, month, day)), b, true
}

// digits consumes between min and max
// decimal digits from the front of b.
func digits(b []byte, min, max int) (int, []byte, bool) {
	n, v := 0, 0
	for n < len(b) && n < max && b[n] >= '0' && b[n] <= '9' {
		v = v*10 + int(b[n]-'0')
		n++
	}
	if n < min {
		return 0, b, false
	}
	return v, b[n:], true
}

// AppendDate appends the YYYY-MM-DD
// form of the given day number to dst.
func AppendDate(dst []byte, days int32) []byte {
	y, m, d := CivilFromDays(int64(days))
	dst = appendInt(dst, y, 4)
	dst = append(dst, '-')
	dst = appendInt(dst, m, 2)
	dst = append(dst, '-')
	return appendInt(dst, d, 2)
}

// FromNumber interprets n as a date
// written in YYYYMMDD form.
func FromNumber(n int64) (int32, bool) {
	if n < 0 {
		return 0, false
	}
	y, md := n/10000, n%10000
	m, d := int(md/100), int(md%100)
	if y > MaxYear || !Valid(int(y), m, d) {
		return 0, false
	}
	return int32(DaysFromCivil(int(y), m, d)), true
}

// ToNumber is the inverse of FromNumber.
func ToNumber(days int32) int64 {
	y, m, d := CivilFromDays(int64(days))
	return int64(y)*10000 + int64(m)*100 + int64(d)
}
