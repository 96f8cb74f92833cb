package config

import "testing"

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		apiURL    string
		expectErr bool
	}{
		{
			name:   "both set",
			apiKey: "fc-test-key",
			apiURL: "https://api.example.com",
		},
		{
			name:      "missing API key",
			apiKey:    "",
			apiURL:    "https://api.example.com",
			expectErr: true,
		},
		{
			name:      "missing API URL",
			apiKey:    "fc-test-key",
			apiURL:    "",
			expectErr: true,
		},
		{
			name:      "nothing set",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(apiKeyEnv, tt.apiKey)
			t.Setenv(apiURLEnv, tt.apiURL)

			cfg, err := Load()

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.APIKey != tt.apiKey {
				t.Errorf("expected APIKey %q, got %q", tt.apiKey, cfg.APIKey)
			}
			if cfg.APIURL != tt.apiURL {
				t.Errorf("expected APIURL %q, got %q", tt.apiURL, cfg.APIURL)
			}
		})
	}
}
