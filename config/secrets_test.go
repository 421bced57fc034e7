package config

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVault struct {
	secret *api.Secret
	err    error
	paths  []string
}

func (f *fakeVault) Read(path string) (*api.Secret, error) {
	f.paths = append(f.paths, path)
	return f.secret, f.err
}

type fakeSecretsClient struct {
	value *string
	err   error
}

func (f *fakeSecretsClient) GetSecretValue(input *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: input.SecretId, SecretString: f.value}, nil
}

func TestEnvSecretManager(t *testing.T) {
	manager := &EnvSecretManager{}

	t.Setenv("THREATSHARE_AUTH_JWT_SECRET", "k7Qp2vX9mLr4Tz8Wn3Hc6Jd1Fb5Gs0Ya")
	value, err := manager.GetJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, "k7Qp2vX9mLr4Tz8Wn3Hc6Jd1Fb5Gs0Ya", value)

	_, err = manager.GetSecret("missing_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THREATSHARE_MISSING_KEY")
}

func TestVaultSecretManager_GetSecret(t *testing.T) {
	tests := []struct {
		name    string
		vault   *fakeVault
		want    string
		wantErr string
	}{
		{
			name:  "kv v1 payload",
			vault: &fakeVault{secret: &api.Secret{Data: map[string]interface{}{"jwt_secret": "s1"}}},
			want:  "s1",
		},
		{
			name: "kv v2 payload",
			vault: &fakeVault{secret: &api.Secret{Data: map[string]interface{}{
				"data": map[string]interface{}{"jwt_secret": "s2"},
			}}},
			want: "s2",
		},
		{
			name:    "missing secret",
			vault:   &fakeVault{},
			wantErr: "secret not found",
		},
		{
			name:    "missing key",
			vault:   &fakeVault{secret: &api.Secret{Data: map[string]interface{}{"other": "x"}}},
			wantErr: "key jwt_secret not found",
		},
		{
			name:    "non string value",
			vault:   &fakeVault{secret: &api.Secret{Data: map[string]interface{}{"jwt_secret": 42}}},
			wantErr: "is not a string",
		},
		{
			name:    "read failure",
			vault:   &fakeVault{err: errors.New("permission denied")},
			wantErr: "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &VaultSecretManager{path: DefaultVaultPath, logical: tt.vault}
			got, err := manager.GetJWTSecret()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{DefaultVaultPath}, tt.vault.paths)
		})
	}
}

func TestAWSSecretManager_GetSecret(t *testing.T) {
	manager := &AWSSecretManager{
		secretID: DefaultAWSSecretID,
		client:   &fakeSecretsClient{value: aws.String(`{"jwt_secret":"from-aws"}`)},
	}
	got, err := manager.GetJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, "from-aws", got)

	manager.client = &fakeSecretsClient{value: aws.String(`not json`)}
	_, err = manager.GetJWTSecret()
	assert.ErrorContains(t, err, "failed to parse AWS secret JSON")

	manager.client = &fakeSecretsClient{}
	_, err = manager.GetJWTSecret()
	assert.ErrorContains(t, err, "has no string value")

	manager.client = &fakeSecretsClient{err: errors.New("AccessDenied")}
	_, err = manager.GetJWTSecret()
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestNewSecretManager(t *testing.T) {
	cfg := &Config{}
	manager, err := NewSecretManager(cfg)
	require.NoError(t, err)
	assert.IsType(t, &EnvSecretManager{}, manager)

	cfg.Secrets.Provider = "vault"
	cfg.Secrets.Vault.Address = "http://127.0.0.1:8200"
	manager, err = NewSecretManager(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultVaultPath, manager.(*VaultSecretManager).path)

	cfg.Secrets.Provider = "gcp"
	_, err = NewSecretManager(cfg)
	assert.ErrorContains(t, err, "unsupported secret provider")
}

func TestLoadSecretsFrom(t *testing.T) {
	cfg := &Config{}
	manager := &VaultSecretManager{path: "secret/custom", logical: &fakeVault{
		secret: &api.Secret{Data: map[string]interface{}{"jwt_secret": "vault-secret"}},
	}}
	require.NoError(t, loadSecretsFrom(manager, cfg))
	assert.Equal(t, "vault-secret", cfg.Auth.JWTSecret)

	err := loadSecretsFrom(&VaultSecretManager{path: "p", logical: &fakeVault{}}, cfg)
	assert.ErrorContains(t, err, "failed to load JWT secret")
}
