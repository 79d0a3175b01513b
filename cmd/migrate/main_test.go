package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr bool
	}{
		{name: "up", args: []string{"up"}, want: command{name: "up"}},
		{name: "version", args: []string{"version"}, want: command{name: "version"}},
		{name: "down defaults to one step", args: []string{"down"}, want: command{name: "down", n: 1}},
		{name: "down with steps", args: []string{"down", "3"}, want: command{name: "down", n: 3}},
		{name: "force", args: []string{"force", "1"}, want: command{name: "force", n: 1}},
		{name: "no args", args: nil, wantErr: true},
		{name: "down with bad steps", args: []string{"down", "0"}, wantErr: true},
		{name: "force without version", args: []string{"force"}, wantErr: true},
		{name: "force with bad version", args: []string{"force", "x"}, wantErr: true},
		{name: "unknown", args: []string{"drop"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
