package config

import (
	"fmt"
	"os"
)

// ResolveAPIKey resolves a secret based on the given source.
// Supported sources: "env" (from environment variable), "config" (from config value),
// "keyring" (currently falls back to env).
func ResolveAPIKey(source, configValue, envVar string) (string, error) {
	switch source {
	case "keyring", "env", "":
		return resolveFromEnv(envVar)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("key source is 'config' but no value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown key source: %q", source)
	}
}

// ResolveToken is ResolveAPIKey for forge tokens, which are optional: an unset
// environment variable yields an empty token rather than an error.
func ResolveToken(fc ForgeConfig, envVar string) (string, error) {
	if fc.TokenSource == "config" {
		return ResolveAPIKey(fc.TokenSource, fc.Token, envVar)
	}
	if fc.TokenSource != "" && fc.TokenSource != "env" && fc.TokenSource != "keyring" {
		return "", fmt.Errorf("unknown token_source: %q", fc.TokenSource)
	}
	return os.Getenv(envVar), nil
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}
