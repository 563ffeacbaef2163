package services

import (
	"fmt"
	"strings"

	"github.com/yazameet/yazameet-backend/config"
)

// GetBaseURL retrieves the front-end base URL used in links sent to users.
// FRONTEND_URL wins; BASE_URL is accepted for older deployments.
func GetBaseURL(cfg config.Config) string {
	if baseURL := config.GetString(cfg, "FRONTEND_URL", ""); baseURL != "" {
		return strings.TrimSuffix(baseURL, "/")
	}
	return strings.TrimSuffix(config.GetString(cfg, "BASE_URL", "http://localhost:3000"), "/")
}

// BuildProjectURL returns e.g. "https://example.com/projects/42"
func BuildProjectURL(baseURL string, projectID uint) string {
	return fmt.Sprintf("%s/projects/%d", strings.TrimSuffix(baseURL, "/"), projectID)
}

// BuildProjectRequestsURL is the page where an owner reviews contact requests.
func BuildProjectRequestsURL(baseURL string, projectID uint) string {
	return BuildProjectURL(baseURL, projectID) + "/requests"
}
