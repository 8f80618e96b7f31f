package pipeline

import (
	"context"
	"errors"

	"nba_props/refresh/internal/artifacts"
	"nba_props/refresh/internal/client"
	"nba_props/refresh/internal/config"
)

// ErrorKind names the tier of a fatal error for logs and metrics:
// config, fetch/<kind>, data_file/<kind>, canceled or internal.
func ErrorKind(err error) string {
	var (
		cfgErr   *config.ConfigError
		fetchErr *client.FetchError
		dataErr  *artifacts.DataFileError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "config"
	case errors.As(err, &dataErr):
		return "data_file/" + string(dataErr.Kind)
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &fetchErr):
		return "fetch/" + string(fetchErr.Kind)
	}
	return "internal"
}

// Retryable reports whether running again later may succeed. Only rate
// limits and transient fetch failures qualify.
func Retryable(err error) bool {
	var fetchErr *client.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return false
}
