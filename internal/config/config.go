package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/stayextras/upsell-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	DBUrl string

	StripeSecretKey            string
	StripeWebhookSecret        string
	StripeConnectWebhookSecret string

	HospitableBaseURL      string
	HospitableClientID     string
	HospitableClientSecret string

	TwilioAccountSID string
	TwilioAuthToken  string
	SendgridAPIKey   string
	SendgridFrom     string

	RSAPublicKey *rsa.PublicKey

	ValidatePhoneWithTwilio bool
	SendgridSandboxMode     bool
	SeedDemoData            bool
	CORSHighSecurity        bool
}

func LoadConfig(appName string) *Config {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err == nil {
		utils.Logger.Debug("Loaded environment from .env file")
	}

	utils.Logger.Info("Loading config for app: ", appName)

	cfg := &Config{
		AppName: appName,
		AppPort: mustEnv("APP_PORT"),
		AppUrl:  mustEnv("APP_URL"),
		DBUrl:   mustEnv("DB_URL"),

		StripeSecretKey:            mustEnv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:        mustEnv("STRIPE_WEBHOOK_SECRET"),
		StripeConnectWebhookSecret: os.Getenv("STRIPE_CONNECT_WEBHOOK_SECRET"),

		HospitableBaseURL:      envOr("HOSPITABLE_BASE_URL", "https://connect.hospitable.com"),
		HospitableClientID:     os.Getenv("HOSPITABLE_CLIENT_ID"),
		HospitableClientSecret: os.Getenv("HOSPITABLE_CLIENT_SECRET"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendgridFrom:     os.Getenv("SENDGRID_FROM_EMAIL"),

		ValidatePhoneWithTwilio: envBool("VALIDATE_PHONE_WITH_TWILIO"),
		SendgridSandboxMode:     envBool("SENDGRID_SANDBOX_MODE"),
		SeedDemoData:            envBool("SEED_DEMO_DATA"),
		CORSHighSecurity:        envBool("CORS_HIGH_SECURITY"),
	}

	cfg.RSAPublicKey = loadRSAPublicKey()

	if cfg.ValidatePhoneWithTwilio && (cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "") {
		utils.Logger.Fatal("VALIDATE_PHONE_WITH_TWILIO is set but Twilio credentials are missing")
	}

	return cfg
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func loadRSAPublicKey() *rsa.PublicKey {
	publicKeyBase64 := mustEnv("RSA_PUBLIC_KEY_BASE64")
	publicKeyPEM, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to decode base64 public key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	return publicKey
}
