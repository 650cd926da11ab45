package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-s", "secret", "-x", "1"},
			allowed: []string{"-s"},
			want:    []string{"-s", "secret"},
		},
		{
			name:    "equals form",
			args:    []string{"-s=secret", "-x=1"},
			allowed: []string{"-s"},
			want:    []string{"-s=secret"},
		},
		{
			name:    "order preserved",
			args:    []string{"-t", "5", "-a", ":8080", "-z"},
			allowed: []string{"-a", "-t"},
			want:    []string{"-t", "5", "-a", ":8080"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-c", "-a", "addr"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "dash value needs equals form",
			args:    []string{"-t=-5", "-a", ":80"},
			allowed: []string{"-t"},
			want:    []string{"-t=-5"},
		},
		{
			name:    "dash value in separate form is not taken",
			args:    []string{"-t", "-5"},
			allowed: []string{"-t"},
			want:    []string{"-t"},
		},
		{
			name:    "nil args",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-a", ":80", "-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigFileFlag([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", ":80"}))
	assert.Equal(t, "", ConfigFileFlag(nil))
}
