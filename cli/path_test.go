package cli

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestIncludePath(t *testing.T) {
	sep := string(os.PathListSeparator)

	tests := []struct {
		name string
		dirs []string
		env  string
		want []string
	}{
		{"empty", nil, "", nil},
		{"flags_only", []string{"a", "b"}, "", []string{"a", "b"}},
		{"env_only", nil, strings.Join([]string{"c", "d"}, sep), []string{"c", "d"}},
		{"flags_first", []string{"a"}, "c", []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := includePath(tt.dirs, tt.env); !slices.Equal(got, tt.want) {
				t.Errorf("includePath(%q, %q) = %q, want %q", tt.dirs, tt.env, got, tt.want)
			}
		})
	}
}
