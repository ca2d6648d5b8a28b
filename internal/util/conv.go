package util

import (
	"fmt"
	"strconv"
	"strings"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

var sizeUnits = map[string]float64{
	"B":  1.0 / (1024 * 1024),
	"KB": 1.0 / 1024,
	"MB": 1,
	"GB": 1024,
}

// ParseSizeMB 解析 "45 MB"、"1.5GB" 这类展示用大小标签，返回 MB
func ParseSizeMB(label string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return 0, fmt.Errorf("empty size label")
	}

	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i <= 0 {
		return 0, fmt.Errorf("invalid size label %q", label)
	}

	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size label %q: %w", label, err)
	}

	factor, ok := sizeUnits[strings.TrimSpace(s[i:])]
	if !ok {
		return 0, fmt.Errorf("unknown size unit in %q", label)
	}
	return value * factor, nil
}
