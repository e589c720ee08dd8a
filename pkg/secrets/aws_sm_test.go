package secrets

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type fakeSecretsManager struct {
	getOut *secretsmanager.GetSecretValueOutput
	getErr error

	putIn *secretsmanager.PutSecretValueInput
}

func (f *fakeSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.getOut, f.getErr
}

func (f *fakeSecretsManager) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.putIn = params
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func TestGetSecret_DecodesJSONMap(t *testing.T) {
	p := &AWSSecretsManagerProvider{client: &fakeSecretsManager{
		getOut: &secretsmanager.GetSecretValueOutput{
			SecretString: aws.String(`{"refresh_token":"rt-1"}`),
		},
	}}

	values, err := p.GetSecret(context.Background(), "questrade/token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["refresh_token"] != "rt-1" {
		t.Errorf("expected refresh_token=rt-1, got %s", values["refresh_token"])
	}
}

func TestGetSecret_BinarySecretNotPanic(t *testing.T) {
	// SecretString is nil when the secret was stored as binary.
	p := &AWSSecretsManagerProvider{client: &fakeSecretsManager{
		getOut: &secretsmanager.GetSecretValueOutput{
			SecretBinary: []byte{0x01, 0x02},
		},
	}}

	_, err := p.GetSecret(context.Background(), "questrade/token")
	if err == nil {
		t.Fatal("expected an error for a secret with no string value")
	}
}

func TestGetSecret_FetchError(t *testing.T) {
	p := &AWSSecretsManagerProvider{client: &fakeSecretsManager{
		getErr: fmt.Errorf("access denied"),
	}}

	_, err := p.GetSecret(context.Background(), "questrade/token")
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestPutSecret_EncodesJSONMap(t *testing.T) {
	fake := &fakeSecretsManager{}
	p := &AWSSecretsManagerProvider{client: fake}

	err := p.PutSecret(context.Background(), "questrade/token", map[string]string{
		"refresh_token": "rt-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.putIn == nil || *fake.putIn.SecretId != "questrade/token" {
		t.Fatal("expected PutSecretValue to target the given secret id")
	}
	if got := *fake.putIn.SecretString; got != `{"refresh_token":"rt-2"}` {
		t.Errorf("unexpected secret payload: %s", got)
	}
}
