package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	apiKeyEnv = "FIRECRAWL_API_KEY"
	apiURLEnv = "API_URL"
)

// Config holds the Firecrawl credentials and endpoint. It is loaded once at
// startup and passed by value so nothing can mutate it afterwards.
type Config struct {
	APIKey string
	APIURL string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists. Both settings are required;
// a missing one is a fatal error and must be reported before any network
// call is attempted.
func Load() (Config, error) {
	// Best effort: a missing .env file just means the variables come from
	// the process environment.
	_ = godotenv.Load()

	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return Config{}, errors.Errorf("%s not found in environment or .env file", apiKeyEnv)
	}

	url := os.Getenv(apiURLEnv)
	if url == "" {
		return Config{}, errors.Errorf("%s not found in environment or .env file", apiURLEnv)
	}

	return Config{APIKey: key, APIURL: url}, nil
}
