package naming

import (
	"testing"
	"time"
)

func TestNamingFunctions(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "Channel",
			got:      Channel("staging", at, "ab12cd34"),
			expected: "staging-20240315-103000-ab12cd34",
		},
		{
			name:     "ChannelNormalizesToUTC",
			got:      Channel("staging", at.In(time.FixedZone("CET", 3600)), "ab12cd34"),
			expected: "staging-20240315-103000-ab12cd34",
		},
		{
			name:     "TemplateKey",
			got:      TemplateKey("templates", "Network", "0123456789abcdef"),
			expected: "templates/Network.0123456789ab.template",
		},
		{
			name:     "TemplateKeyNoPrefix",
			got:      TemplateKey("", "Network", "0123456789abcdef"),
			expected: "Network.0123456789ab.template",
		},
		{
			name:     "TemplateKeyShortHash",
			got:      TemplateKey("t", "Network", "abc"),
			expected: "t/Network.abc.template",
		},
		{
			name:     "RootStack",
			got:      RootStack("staging"),
			expected: "staging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestRunSuffix(t *testing.T) {
	a := RunSuffix()
	b := RunSuffix()
	if len(a) != 8 {
		t.Errorf("Expected 8-character suffix, got %q", a)
	}
	if a == b {
		t.Errorf("Expected distinct suffixes, got %q twice", a)
	}
}
