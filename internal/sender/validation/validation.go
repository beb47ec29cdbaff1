// Package validation provides shared helpers for the chat senders.
package validation

import "strings"

// IsValidURL checks if a string is a valid HTTP/HTTPS URL.
func IsValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// MaskURL shortens a URL that may embed a secret token for logging.
func MaskURL(url string) string {
	if len(url) > 50 {
		return url[:30] + "..." + url[len(url)-10:]
	}
	return url
}

// ParseRecipients splits a comma-separated address list, dropping blanks.
func ParseRecipients(value string) []string {
	var recipients []string
	for _, r := range strings.Split(value, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}
