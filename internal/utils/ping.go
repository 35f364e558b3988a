package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ProbeTimeout bounds each dependency probe made by the health check
const ProbeTimeout = 1500 * time.Millisecond

// ProbeHTTP sends a GET to target. Transport failures and 5xx answers are errors;
// anything else means the service is up, including 403 and 404 from endpoints
// that want credentials.
func ProbeHTTP(target string, timeout time.Duration) error {
	code, _, errs := fiber.Get(target).Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to reach %s: %w", target, errs[0])
	}
	if code >= fiber.StatusInternalServerError {
		return fmt.Errorf("%s answered %d", target, code)
	}
	return nil
}

// PingAuthorizer probes the Authorizer health endpoint
func PingAuthorizer(authzURL string) error {
	if strings.TrimSpace(authzURL) == "" {
		return fmt.Errorf("authorizer url is not configured")
	}
	return ProbeHTTP(strings.TrimRight(authzURL, "/")+"/health", ProbeTimeout)
}

// PingStorage probes an S3 compatible endpoint
func PingStorage(endpoint string) error {
	return ProbeHTTP(endpoint, ProbeTimeout)
}
