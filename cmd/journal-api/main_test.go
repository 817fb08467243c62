package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		_ = hashPasswordCmd.Flags().Set("password", "")
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHashPasswordFromFlag(t *testing.T) {
	out, err := execute(t, "", "hash-password", "--password", "correct horse")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := execute(t, "battery staple\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("battery staple")))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := execute(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  environment: moon\n"), 0o644))

	configFile = path
	t.Cleanup(func() { configFile = "./config/config.yaml" })

	err := loadConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigRequiresSecretLocation(t *testing.T) {
	configFile = filepath.Join(t.TempDir(), "absent.yaml")
	awsSecrets = true
	awsRegion, awsSecretName = "", ""
	t.Cleanup(func() {
		configFile = "./config/config.yaml"
		awsSecrets = false
	})

	err := loadConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--aws-region")
}
