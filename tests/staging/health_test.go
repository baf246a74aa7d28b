//go:build staging

package staging

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLivenessProbe(t *testing.T) {
	status, _ := apiGet(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
}

// Readiness includes a database ping, so this also proves the deployed
// instance can reach Postgres.
func TestReadinessProbe(t *testing.T) {
	status, _ := apiGet(t, "/readyz")
	assert.Equal(t, http.StatusOK, status)
}
