package security

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferenceHTTPClient(t *testing.T) {
	client := InferenceHTTPClient(60*time.Second, false)
	assert.Greater(t, client.Timeout, 60*time.Second)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, client.Timeout, transport.ResponseHeaderTimeout)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
}

func TestInferenceHTTPClient_DefaultTimeout(t *testing.T) {
	client := InferenceHTTPClient(0, false)
	assert.Equal(t, DefaultHTTPTimeout+requestSlack, client.Timeout)
}

func TestInferenceHTTPClient_Insecure(t *testing.T) {
	transport := InferenceHTTPClient(0, true).Transport.(*http.Transport)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}
