package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NextChildCode returns the code following the highest numeric last segment among
// siblings, appended to parentCode. width is a minimum zero-padding, never a cap.
func NextChildCode(parentCode string, siblings []string, width int) string {
	if width < 1 {
		width = 1
	}
	next := maxSegment(siblings, lastSegment) + 1
	return fmt.Sprintf("%s.%0*d", parentCode, width, next)
}

// NextRootCode returns max(numeric root codes)+1, or "1" for an empty scope.
func NextRootCode(roots []string) string {
	next := maxSegment(roots, func(code string) string { return code }) + 1
	return strconv.FormatInt(next, 10)
}

func maxSegment(codes []string, segment func(string) string) int64 {
	var highest int64
	for _, code := range codes {
		value, err := strconv.ParseInt(strings.TrimSpace(segment(code)), 10, 64)
		if err != nil || value < 0 {
			continue
		}
		if value > highest {
			highest = value
		}
	}
	return highest
}

func lastSegment(code string) string {
	if idx := strings.LastIndex(code, "."); idx >= 0 {
		return code[idx+1:]
	}
	return code
}
