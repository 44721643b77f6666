package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	Env     string

	DBUrl   string
	AmqpURL string

	RSAPublicKey *rsa.PublicKey

	// Create a default unit on first application when a property has none.
	AutoProvisionUnits bool

	CORSAllowedOrigin string
}

func LoadConfig() *Config {
	// .env is optional; real deployments inject env vars directly.
	if err := godotenv.Load(); err != nil {
		utils.Logger.Info("No .env file found; reading environment directly")
	}

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		utils.Logger.Fatal("AMQP_URL env var is missing")
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key PEM")
	}

	autoProvision := false
	if raw := os.Getenv("AUTO_PROVISION_UNITS"); raw != "" {
		autoProvision, err = strconv.ParseBool(raw)
		if err != nil {
			utils.Logger.WithError(err).Fatal("AUTO_PROVISION_UNITS must be a boolean")
		}
	}

	corsOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	return &Config{
		AppName:            "homehub-backend",
		AppPort:            appPort,
		Env:                env,
		DBUrl:              dbURL,
		AmqpURL:            amqpURL,
		RSAPublicKey:       pubKey,
		AutoProvisionUnits: autoProvision,
		CORSAllowedOrigin:  corsOrigin,
	}
}
