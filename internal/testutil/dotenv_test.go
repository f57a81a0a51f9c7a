package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  string
		val  string
		ok   bool
	}{
		{name: "plain", line: "AZURE_DEVOPS_SERVER_COLLECTION=DefaultCollection", key: "AZURE_DEVOPS_SERVER_COLLECTION", val: "DefaultCollection", ok: true},
		{name: "export prefix", line: "export AZURE_DEVOPS_SERVER_API_VERSION=6.0", key: "AZURE_DEVOPS_SERVER_API_VERSION", val: "6.0", ok: true},
		{name: "double quoted", line: `TOKEN="abc=def"`, key: "TOKEN", val: "abc=def", ok: true},
		{name: "single quoted", line: "TOKEN='abc'", key: "TOKEN", val: "abc", ok: true},
		{name: "comment", line: "# TOKEN=abc", ok: false},
		{name: "blank", line: "   ", ok: false},
		{name: "no equals", line: "TOKEN", ok: false},
		{name: "empty key", line: "=value", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, val, ok := parseEnvLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.key, key)
				assert.Equal(t, tt.val, val)
			}
		})
	}
}
