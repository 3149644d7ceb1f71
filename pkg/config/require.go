package config

import (
	"fmt"
	"os"
	"strings"
)

// Required collects missing required variables so they can be reported at once.
type Required struct {
	missing []string
}

func (r *Required) Env(envName string) string {
	v := strings.TrimSpace(os.Getenv(envName))
	if v == "" {
		r.missing = append(r.missing, envName)
	}
	return v
}

func (r *Required) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env %s", strings.Join(r.missing, ", "))
}
