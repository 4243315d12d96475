package instance

import "os"

// GetID identifies this worker process in logs and lock ownership. It prefers
// CRM_WORKER_ID, then the hostname.
func GetID() string {
	if id := os.Getenv("CRM_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
