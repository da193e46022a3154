package instance

import (
	"fmt"
	"os"
	"strings"
)

const fallbackHost = "worker"

// ID names this process in logs and lock ownership. ORDERDESK_INSTANCE_ID
// wins, then WORKER_ID, then hostname-pid so two workers on one host differ.
func ID() string {
	for _, key := range []string{"ORDERDESK_INSTANCE_ID", "WORKER_ID"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fallbackHost
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
