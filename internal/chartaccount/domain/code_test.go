package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextChildCode(t *testing.T) {
	cases := []struct {
		name     string
		parent   string
		siblings []string
		width    int
		want     string
	}{
		{name: "first child", parent: "2", width: 2, want: "2.01"},
		{name: "after highest", parent: "2", siblings: []string{"2.01", "2.09", "2.03"}, width: 2, want: "2.10"},
		{name: "past two digits", parent: "2", siblings: []string{"2.99"}, width: 2, want: "2.100"},
		{name: "ignores non numeric", parent: "1.01", siblings: []string{"1.01.ab", "1.01.02"}, width: 2, want: "1.01.03"},
		{name: "width floor", parent: "3", siblings: []string{"3.4"}, width: 0, want: "3.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextChildCode(tc.parent, tc.siblings, tc.width))
		})
	}
}

func TestNextRootCode(t *testing.T) {
	assert.Equal(t, "1", NextRootCode(nil))
	assert.Equal(t, "4", NextRootCode([]string{"1", "3", "x", "2"}))
	assert.Equal(t, "1", NextRootCode([]string{"A"}))
}
