package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		secure   bool
	}{
		{"localhost:9000", "localhost:9000", false},
		{"http://localhost:9000", "localhost:9000", false},
		{"https://s3.amazonaws.com/", "s3.amazonaws.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure := endpointHost(tt.endpoint)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		Endpoint:  "https://s3.amazonaws.com",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "mods",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = NewClient(Config{Endpoint: "bad host:9000"})
	assert.Error(t, err)
}

func TestNewTransport(t *testing.T) {
	tr := newTransport(5 * time.Second)
	assert.Equal(t, 5*time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 5*time.Second, tr.ResponseHeaderTimeout)
}
