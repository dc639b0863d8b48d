package sfdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/caarlos0/env/v11"
)

// DefaultEndpoint is the sandbox login endpoint used when Credentials.Endpoint is empty
const DefaultEndpoint = "https://test.salesforce.com/services/Soap/c/32.0"

// EnvPrefix prefixes every environment variable read by CredentialsFromEnv
const EnvPrefix = "SFDB_"

// Credentials to log in to a salesforce org.
// WsdlPath points at the enterprise or partner WSDL downloaded from the org.
type Credentials struct {
	Username      string `json:"username" env:"USERNAME" validate:"required"`
	Password      string `json:"password" env:"PASSWORD" validate:"required"`
	SecurityToken string `json:"securityToken" env:"SECURITY_TOKEN" validate:"required"`
	WsdlPath      string `json:"wsdlPath" env:"WSDL_PATH" validate:"required"`
	Endpoint      string `json:"endpoint" env:"ENDPOINT" validate:"omitempty,url"`
}

func (c Credentials) withDefaults() Credentials {
	if len(c.Endpoint) == 0 {
		c.Endpoint = DefaultEndpoint
	}
	return c
}

// CredentialsFromEnv reads Credentials from SFDB_USERNAME, SFDB_PASSWORD, SFDB_SECURITY_TOKEN,
// SFDB_WSDL_PATH and SFDB_ENDPOINT
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return Credentials{}, fmt.Errorf("unable to read credentials from environment: %w", err)
	}
	return c.withDefaults(), nil
}

type SecretsGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// CredentialsFromSecret reads Credentials stored as a json secret, using the json field names
// of Credentials
func CredentialsFromSecret(ctx context.Context, sm SecretsGetter, key string) (Credentials, error) {
	raw, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to fetch credentials from secrets manager: %w", err)
	}
	if raw.SecretString == nil {
		return Credentials{}, fmt.Errorf("secret %s has no string value", key)
	}

	c := Credentials{}
	if err := json.Unmarshal([]byte(*raw.SecretString), &c); err != nil {
		return Credentials{}, fmt.Errorf("unable to parse credentials from secrets manager: %w", err)
	}
	return c.withDefaults(), nil
}
