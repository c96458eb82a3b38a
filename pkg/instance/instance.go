package instance

import "os"

// GetID returns the process identifier used in logs: the platform dyno
// name when set, then the host name, then a default.
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
