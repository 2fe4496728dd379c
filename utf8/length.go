// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package utf8 provides the character-counting
// helpers used for length-limited text.
package utf8

import (
	"encoding/binary"
	"math/bits"
)

// Length returns the number of runes in a valid UTF-8 string.
func Length(str string) int {
	n := len(str)
	continuation := 0
	// count continuation bytes (0b10xx_xxxx);
	// every other byte starts a rune
	for len(str) >= 8 {
		qword := binary.LittleEndian.Uint64([]byte(str[:8]))
		str = str[8:]

		bit7 := qword & 0x8080808080808080
		if bit7 == 0 {
			continue
		}
		bit6 := qword << 1
		comb := bit7 &^ bit6
		continuation += bits.OnesCount64(comb)
	}
	for i := 0; i < len(str); i++ {
		if str[i]&0b11_000000 == 0b10_000000 {
			continuation++
		}
	}
	return n - continuation
}

// Truncate returns the longest prefix of str
// holding at most n runes, and whether any
// runes were dropped.
func Truncate(str string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if len(str) <= n {
		return str, false
	}
	runes := 0
	for i := 0; i < len(str); i++ {
		if str[i]&0b11_000000 == 0b10_000000 {
			continue
		}
		if runes == n {
			return str[:i], true
		}
		runes++
	}
	return str, false
}
