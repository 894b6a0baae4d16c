package tests

import (
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/elevezen/elevezen/core"
)

func TestMain(m *testing.M) {
	core.Conf = &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "EleveZen",
		WorkDir:          core.Getwd(),
		SecretKey:        []byte("test-secret-key"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "EleveZen", Address: "noreply@localhost"},

		PasswordResetTimeoutDelta:  3 * 24 * time.Hour,
		AdminRequestCodeExpiration: 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
	os.Exit(m.Run())
}
