package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"plantify/config"
	"plantify/internal/domain/entity"
)

func TestNew_WithoutCredential(t *testing.T) {
	cfg := config.Default()

	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	require.ErrorIs(t, c.Identifier.Ready(), entity.ErrCredentialMissing)
	require.False(t, c.Acquirer.HasCamera())
	require.False(t, c.IdentificationService.CameraAvailable())
}

func TestNew_CameraFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "k"
	cfg.Camera.Enabled = true

	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Identifier.Ready())
	require.True(t, c.Acquirer.HasCamera())
}

func TestNew_ForceCamera(t *testing.T) {
	c, err := New(context.Background(), config.Default(), Options{ForceCamera: true})
	require.NoError(t, err)
	require.True(t, c.Acquirer.HasCamera())
}

func TestNew_BadImageLimit(t *testing.T) {
	cfg := config.Default()
	cfg.MaxImageSize = "huge"

	_, err := New(context.Background(), cfg, Options{})
	require.Error(t, err)
}

type stubIdentifier struct{}

func (stubIdentifier) Ready() error { return nil }

func (stubIdentifier) Identify(context.Context, entity.EncodedPayload) (string, error) {
	return "", nil
}

func TestNew_Overrides(t *testing.T) {
	c, err := New(context.Background(), config.Default(), Options{Identifier: stubIdentifier{}})
	require.NoError(t, err)
	require.Equal(t, stubIdentifier{}, c.Identifier)
}

func TestClose(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "k"

	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = New(context.Background(), config.Default(), Options{Identifier: stubIdentifier{}})
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
