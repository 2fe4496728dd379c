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

import (
	"math/rand"
	"testing"
	"time"
)

func TestCivilRoundTrip(t *testing.T) {
	for i := 0; i < 2000; i++ {
		days := int64(rand.Intn(3652425)) - 719528 // years 0..9999
		y, m, d := CivilFromDays(days)
		if !Valid(y, m, d) {
			t.Fatalf("day %d: invalid civil date %d-%d-%d", days, y, m, d)
		}
		if got := DaysFromCivil(y, m, d); got != days {
			t.Fatalf("day %d -> %d-%d-%d -> %d", days, y, m, d, got)
		}
		ref := time.Unix(days*86400, 0).UTC()
		if ref.Year() != y || int(ref.Month()) != m || ref.Day() != d {
			t.Fatalf("day %d: got %d-%d-%d, want %s", days, y, m, d, ref)
		}
	}
}

func TestParseDate(t *testing.T) {
	tcs := []struct {
		in   string
		out  string
		fail bool
	}{
		{in: "1970-01-01", out: "1970-01-01"},
		{in: " 2024-2-9 ", out: "2024-02-09"},
		{in: "2000-02-29", out: "2000-02-29"},
		{in: "1900-02-29", fail: true},
		{in: "2023-13-01", fail: true},
		{in: "23-01-01", fail: true},
		{in: "2023-01-01x", fail: true},
		{in: "", fail: true},
	}
	for _, tc := range tcs {
		days, ok := ParseDate([]byte(tc.in))
		if ok == tc.fail {
			t.Errorf("ParseDate(%q): ok=%v", tc.in, ok)
			continue
		}
		if ok {
			if got := string(AppendDate(nil, days)); got != tc.out {
				t.Errorf("ParseDate(%q) formats as %q; want %q", tc.in, got, tc.out)
			}
		}
	}
}

func TestClock(t *testing.T) {
	tcs := []struct {
		in   string
		secs int32
		out  string
		fail bool
	}{
		{in: "00:00:00", secs: 0, out: "00:00:00"},
		{in: "1:02:03", secs: 3723, out: "01:02:03"},
		{in: "-838:59:59", secs: -MaxClock, out: "-838:59:59"},
		{in: "839:00:00", fail: true},
		{in: "12:60:00", fail: true},
		{in: "12:00", fail: true},
	}
	for _, tc := range tcs {
		secs, ok := ParseClock([]byte(tc.in))
		if ok == tc.fail {
			t.Errorf("ParseClock(%q): ok=%v", tc.in, ok)
			continue
		}
		if !ok {
			continue
		}
		if secs != tc.secs {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, secs, tc.secs)
		}
		if got := string(AppendClock(nil, secs)); got != tc.out {
			t.Errorf("AppendClock(%d) = %q, want %q", secs, got, tc.out)
		}
	}
}

func TestDateTime(t *testing.T) {
	secs, ok := ParseDateTime([]byte("2019-10-12T07:20:50"))
	if !ok {
		t.Fatal("parse failed")
	}
	want := time.Date(2019, 10, 12, 7, 20, 50, 0, time.UTC).Unix()
	if secs != want {
		t.Fatalf("got %d, want %d", secs, want)
	}
	if got := string(AppendDateTime(nil, secs)); got != "2019-10-12 07:20:50" {
		t.Fatalf("got %q", got)
	}
	before, _ := ParseDateTime([]byte("1969-12-31 23:59:59"))
	if before != -1 {
		t.Fatalf("got %d, want -1", before)
	}
	if got := string(AppendDateTime(nil, before)); got != "1969-12-31 23:59:59" {
		t.Fatalf("got %q", got)
	}
	d, c := SplitDateTime(before)
	if d != -1 || c != 86399 {
		t.Fatalf("SplitDateTime = %d, %d", d, c)
	}
	if _, ok := ParseDateTime([]byte("2019-10-12 24:00:00")); ok {
		t.Fatal("hour 24 should not parse")
	}
}

func TestNumber(t *testing.T) {
	days, ok := FromNumber(20240229)
	if !ok {
		t.Fatal("FromNumber failed")
	}
	if ToNumber(days) != 20240229 {
		t.Fatalf("ToNumber = %d", ToNumber(days))
	}
	for _, bad := range []int64{-1, 20230229, 99999999, 20241301} {
		if _, ok := FromNumber(bad); ok {
			t.Errorf("FromNumber(%d) should fail", bad)
		}
	}
}
