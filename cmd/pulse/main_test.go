package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"pulse"},
			want: []string{"pulse"},
		},
		{
			name: "id first token",
			in:   []string{"pulse", "12"},
			want: []string{"pulse", "projects", "show", "12"},
		},
		{
			name: "id after value flag",
			in:   []string{"pulse", "--api-url", "http://localhost:9000", "12"},
			want: []string{"pulse", "--api-url", "http://localhost:9000", "projects", "show", "12"},
		},
		{
			name: "id after equals flag",
			in:   []string{"pulse", "--dir=./tmp-state", "7"},
			want: []string{"pulse", "--dir=./tmp-state", "projects", "show", "7"},
		},
		{
			name: "id after bool flag",
			in:   []string{"pulse", "--pretty", "7"},
			want: []string{"pulse", "--pretty", "projects", "show", "7"},
		},
		{
			name: "value of a value flag is skipped",
			in:   []string{"pulse", "--log-level", "5"},
			want: []string{"pulse", "--log-level", "5"},
		},
		{
			name: "after double dash",
			in:   []string{"pulse", "--", "12"},
			want: []string{"pulse", "--", "12"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"pulse", "projects", "show", "12"},
			want: []string{"pulse", "projects", "show", "12"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"pulse", "wat"},
			want: []string{"pulse", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
