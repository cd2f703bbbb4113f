package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Kiosk holds the settings for the scanning client.
type Kiosk struct {
	ServerURL     string
	AdminEmail    string
	AdminPassword string
	Devices       []string
	RestartDelay  time.Duration
	LogLevel      string
}

// LoadKiosk reads kiosk settings from the environment and an optional .env file.
func LoadKiosk() Kiosk {
	_ = godotenv.Load()
	return Kiosk{
		ServerURL:     getEnv("KIOSK_SERVER_URL", "http://localhost:3000"),
		AdminEmail:    getEnv("KIOSK_ADMIN_EMAIL", getEnv("ADMIN_EMAIL", "")),
		AdminPassword: getEnv("KIOSK_ADMIN_PASSWORD", getEnv("ADMIN_PASSWORD", "")),
		Devices:       listEnv("KIOSK_DEVICES", []string{"stdin"}),
		RestartDelay:  durationEnv("KIOSK_RESTART_DELAY", 3*time.Second),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}
