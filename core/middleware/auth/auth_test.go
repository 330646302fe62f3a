package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		sent   string
		want   int
	}{
		{"valid key", "secret", "secret", fiber.StatusOK},
		{"wrong key", "secret", "guess", fiber.StatusUnauthorized},
		{"missing key", "secret", "", fiber.StatusUnauthorized},
		{"auth disabled", "", "", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(New(Config{ApiKey: tt.apiKey}))
			app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

			req := httptest.NewRequest("GET", "/", nil)
			if tt.sent != "" {
				req.Header.Set(Header, tt.sent)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
