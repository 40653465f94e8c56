package format

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		num      float64
		preserve bool
		want     AmountResult
	}{
		{"preserved below limit", 99999, true, AmountResult{Value: "99999"}},
		{"preserve ignored at limit", 100000.5, true, AmountResult{Value: "10.00", Type: "万"}},
		{"ten thousands", 100000, false, AmountResult{Value: "10.00", Type: "万"}},
		{"hundred millions", 123456789, false, AmountResult{Value: "1.23", Type: "亿"}},
		{"trillions", 123456789012345, false, AmountResult{Value: "123.46", Type: "万亿"}},
		{"grouped after rounding", 99999999, false, AmountResult{Value: "10,000.00", Type: "万"}},
		{"negative", -123456, false, AmountResult{Value: "-12.35", Type: "万"}},
		{"fraction truncated for magnitude", 12345.678, false, AmountResult{Value: "1.23", Type: "万"}},
		{"small stays raw", 1234.5, false, AmountResult{Value: "1234.5"}},
		{"negative fraction", -0.5, false, AmountResult{Value: "-0.5"}},
		{"beyond unit table", 12345678901234567, false, AmountResult{Value: "1.23"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.num, ChineseUnits, tt.preserve)
			if got != tt.want {
				t.Errorf("Amount(%v) = %+v, want %+v", tt.num, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	units := Units{"", "万", "亿"}
	if got := FormatAmount(99999, units, true); got != "99999" {
		t.Errorf("FormatAmount(99999) = %q, want %q", got, "99999")
	}
	if got := FormatAmount(100000, units, false); got != "10.00万" {
		t.Errorf("FormatAmount(100000) = %q, want %q", got, "10.00万")
	}
	if got := FormatAmount(42, nil, false); got != "42" {
		t.Errorf("FormatAmount(42) = %q, want %q", got, "42")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0.123456789, "0.12346"},
		{"x", ScoreSentinel},
		{nil, ScoreSentinel},
		{"0.5", ScoreSentinel},
		{3, "3.00000"},
		{int64(-2), "-2.00000"},
		{float32(0.5), "0.50000"},
		{0.015625, "0.01563"}, // exact tie rounds away from zero
		{-0.000001, "-0.00000"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := Score(tt.in); got != tt.want {
			t.Errorf("Score(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestampIn(t *testing.T) {
	ms := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC).UnixMilli()

	tests := []struct {
		layout string
		want   string
	}{
		{"", "2024-03-05 07:08:09"},
		{"YYYY-MM-DD", "2024-03-05"},
		{"HH:mm:ss", "07:08:09"},
		{"DD/MM/YYYY at HH:mm", "05/03/2024 at 07:08"},
		{"YYYYY", "2024Y"},
		{"Q1 YY", "Q1 YY"},
		{"MMM", "03M"},
	}
	for _, tt := range tests {
		if got := TimestampIn(ms, tt.layout, time.UTC); got != tt.want {
			t.Errorf("TimestampIn(%q) = %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestTimestampEpochLocal(t *testing.T) {
	want := time.UnixMilli(0).Format("2006-01-02")
	if got := Timestamp(0, "YYYY-MM-DD"); got != want {
		t.Errorf("Timestamp(0) = %q, want %q", got, want)
	}
}

func TestTimestampZone(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	if got := TimestampIn(0, "YYYY-MM-DD HH", shanghai); got != "1970-01-01 08" {
		t.Errorf("TimestampIn(0, +8) = %q", got)
	}
}

func TestFileSize(t *testing.T) {
	tests := []struct {
		bytes    float64
		decimals int
		want     string
	}{
		{0, 2, "0 Bytes"},
		{1024, 2, "1.00 KB"},
		{1536, 1, "1.5 KB"},
		{1000, 2, "1000.00 Bytes"},
		{1048576, 2, "1.00 MB"},
		{123456789, 2, "117.74 MB"},
		{1536, 0, "2 KB"},
		{1536, -1, "1.50 KB"},
		{0.5, 2, "0.50 Bytes"},
		{-2048, 2, "-2.00 KB"},
		{math.Pow(1024, 10), 2, "1048576.00 YB"},
		{math.NaN(), 2, "0 Bytes"},
		{math.Inf(1), 2, "0 Bytes"},
	}
	for _, tt := range tests {
		if got := FileSize(tt.bytes, tt.decimals); got != tt.want {
			t.Errorf("FileSize(%v, %d) = %q, want %q", tt.bytes, tt.decimals, got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name   string
		target map[string]any
		source map[string]any
		want   map[string]any
	}{
		{
			name:   "nested maps merge",
			target: map[string]any{"a": map[string]any{"b": 1}},
			source: map[string]any{"a": map[string]any{"c": 2}},
			want:   map[string]any{"a": map[string]any{"b": 1, "c": 2}},
		},
		{
			name:   "scalar replaced by map",
			target: map[string]any{"a": 1},
			source: map[string]any{"a": map[string]any{"b": 1}},
			want:   map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:   "map replaced by scalar",
			target: map[string]any{"a": map[string]any{"b": 1}},
			source: map[string]any{"a": "x"},
			want:   map[string]any{"a": "x"},
		},
		{
			name:   "nil overwrites",
			target: map[string]any{"a": 1},
			source: map[string]any{"a": nil},
			want:   map[string]any{"a": nil},
		},
		{
			name:   "slices merge by index",
			target: map[string]any{"l": []any{1, 2, 3}},
			source: map[string]any{"l": []any{9}},
			want:   map[string]any{"l": []any{9, 2, 3}},
		},
		{
			name:   "slice grows",
			target: map[string]any{"l": []any{1}},
			source: map[string]any{"l": []any{nil, 5}},
			want:   map[string]any{"l": []any{nil, 5}},
		},
		{
			name:   "slice into scalar becomes map",
			target: map[string]any{},
			source: map[string]any{"l": []any{"a", "b"}},
			want:   map[string]any{"l": map[string]any{"0": "a", "1": "b"}},
		},
		{
			name:   "map merged into slice by index",
			target: map[string]any{"l": []any{"a", "b"}},
			source: map[string]any{"l": map[string]any{"1": "z"}},
			want:   map[string]any{"l": []any{"a", "z"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.target, tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeepMerge() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDeepMergeMutatesTarget(t *testing.T) {
	inner := map[string]any{"b": 1}
	target := map[string]any{"a": inner}
	DeepMerge(target, map[string]any{"a": map[string]any{"c": 2}})
	if inner["c"] != 2 {
		t.Error("nested target map should be updated in place")
	}
}

func TestDeepMergeDoesNotAliasSource(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": 1}}
	got := DeepMerge(nil, src)
	got["a"].(map[string]any)["b"] = 2
	if src["a"].(map[string]any)["b"] != 1 {
		t.Error("source should not be aliased into target")
	}
}

func TestMonthToDate(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		loc        *time.Location
		start, end string
	}{
		{"mid month", time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC), time.UTC,
			"2024-03-01 00:00:00", "2024-03-15 09:30:05"},
		{"defaults to UTC+8", time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC), nil,
			"2024-03-01 00:00:00", "2024-03-15 17:30:05"},
		{"month rolls over in UTC+8", time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC), nil,
			"2024-02-01 00:00:00", "2024-02-01 04:00:00"},
		{"first instant of month", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.UTC,
			"2024-12-01 00:00:00", "2024-12-01 00:00:00"},
	}
	for _, tt := range tests {
		start, end := MonthToDate(tt.now, tt.loc)
		if start != tt.start || end != tt.end {
			t.Errorf("%s: MonthToDate = %q, %q; want %q, %q", tt.name, start, end, tt.start, tt.end)
		}
	}
}
