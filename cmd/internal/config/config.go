package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const envVarsPrefix = "/gestaoacoes/prod/"

type Config struct {
	Environment string
	Port        string
	MachineID   int64

	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	AWSRegion        string
	CognitoRegion    string
	CognitoPoolID    string
	CognitoClientID  string
	S3Region         string
	S3Bucket         string
	WSGatewayURL     string
	NotifyWebhookURL string
	NotifyWebhookKey string

	// DevJWTSecret enables HS256 tokens instead of Cognito JWKS when set.
	DevJWTSecret string

	ProvisionKey     string
	AdminEmail       string
	AdminPassword    string
	AdminName        string
	AdminCompanyIDs  string
	OverdueSchedule  string
	ReminderSchedule string
	RequestBodyLimit string
	ShutdownTimeout  time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the environment (from .env in development or from the SSM
// Parameter Store in production) and returns the typed configuration.
func Load(ctx context.Context) (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env == "production" {
		if err := loadProdEnv(ctx, getEnv("AWS_REGION", "us-east-2")); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*Config, error) {
	machineID, err := strconv.ParseInt(getEnv("MACHINE_ID", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MACHINE_ID: %w", err)
	}

	shutdown, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Environment:      getEnv("GO_ENV", "development"),
		Port:             getEnv("PORT", "7070"),
		MachineID:        machineID,
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBDSN:            getEnv("DB_DSN", "database.db"),
		AWSRegion:        getEnv("AWS_REGION", "us-east-2"),
		CognitoRegion:    getEnv("AWS_COGNITO_REGION", "us-east-2"),
		CognitoPoolID:    os.Getenv("AWS_COGNITO_POOL_ID"),
		CognitoClientID:  os.Getenv("AWS_COGNITO_CLIENT_ID"),
		S3Region:         getEnv("AWS_S3_REGION", "us-east-2"),
		S3Bucket:         os.Getenv("S3_BUCKET_NAME"),
		WSGatewayURL:     os.Getenv("WS_GATEWAY_URL"),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookKey: os.Getenv("NOTIFY_WEBHOOK_SECRET"),
		DevJWTSecret:     os.Getenv("DEV_JWT_SECRET"),
		ProvisionKey:     os.Getenv("ADMIN_PROVISION_KEY"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AdminName:        getEnv("ADMIN_NAME", "Administrador"),
		AdminCompanyIDs:  os.Getenv("ADMIN_COMPANY_IDS"),
		OverdueSchedule:  getEnv("OVERDUE_SCHEDULE", "@every 15m"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "@every 1h"),
		RequestBodyLimit: getEnv("REQUEST_BODY_LIMIT", "30M"),
		ShutdownTimeout:  shutdown,
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func loadProdEnv(ctx context.Context, region string) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	loaded := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("unable to load prod environment: %w", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := (*param.Name)[prefixLength:]
			if err := os.Setenv(key, *param.Value); err != nil {
				return fmt.Errorf("unable to set environment variable %s: %w", key, err)
			}
			loaded++
		}
	}
	log.Debugf("loaded %d prod environment variables", loaded)
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
