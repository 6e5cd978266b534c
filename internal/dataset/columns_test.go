package dataset

import (
	"reflect"
	"testing"
)

func TestUniqueColumnNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no duplicates",
			input: []string{"depth", "age", "d18O"},
			want:  []string{"depth", "age", "d18O"},
		},
		{
			name:  "duplicates numbered from second occurrence",
			input: []string{"a", "b", "a", "a"},
			want:  []string{"a", "b", "a1", "a2"},
		},
		{
			name:  "multiple duplicate groups",
			input: []string{"age", "age", "d18O", "d18O", "d18O"},
			want:  []string{"age", "age1", "d18O", "d18O1", "d18O2"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueColumnNames(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueColumnNames(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if len(got) != len(tt.input) {
				t.Errorf("output length %d != input length %d", len(got), len(tt.input))
			}
			seen := make(map[string]bool)
			for _, n := range got {
				if seen[n] {
					t.Errorf("duplicate output name %q", n)
				}
				seen[n] = true
			}
		})
	}
}
