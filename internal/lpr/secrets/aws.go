package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// AWS fetches signing keys from a Secrets Manager secret. The secret value
// is a JSON document:
//
//	{"keys": [{"kid": "...", "alg": "EdDSA", "private_key_pem": "...", "active": true}]}
type AWS struct {
	client       *secretsmanager.Client
	secretID     string
	versionStage string
}

func NewAWS(ctx context.Context, secretID, region string) (*AWS, error) {
	if secretID == "" {
		return nil, errors.New("secrets: aws provider needs a secret id")
	}

	var cfg aws.Config
	var err error
	if region != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}

	return &AWS{
		client:       secretsmanager.NewFromConfig(cfg),
		secretID:     secretID,
		versionStage: "AWSCURRENT",
	}, nil
}

func (a *AWS) SigningKeys(ctx context.Context) ([]SigningKey, error) {
	out, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(a.secretID),
		VersionStage: aws.String(a.versionStage),
	})
	if err != nil {
		return nil, fmt.Errorf("secrets: fetch %s: %w", a.secretID, err)
	}

	var payload []byte
	switch {
	case out.SecretString != nil:
		payload = []byte(*out.SecretString)
	case len(out.SecretBinary) > 0:
		payload = out.SecretBinary
	default:
		return nil, fmt.Errorf("secrets: secret %s has no payload", a.secretID)
	}

	return parseKeysPayload(payload)
}

func parseKeysPayload(payload []byte) ([]SigningKey, error) {
	var doc struct {
		Keys []SigningKey `json:"keys"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("secrets: parse keys payload: %w", err)
	}
	if len(doc.Keys) == 0 {
		return nil, errors.New("secrets: keys payload holds no keys")
	}
	for _, k := range doc.Keys {
		if err := k.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Keys, nil
}
