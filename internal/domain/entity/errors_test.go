package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("identify: %w", &TransportError{StatusCode: 503, Err: errors.New("unavailable")})

	require.ErrorIs(t, err, ErrTransport)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 503, te.StatusCode)
	require.Contains(t, err.Error(), "HTTP 503")
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, "none", ErrorKind(nil))
	require.Equal(t, "unsupported_media", ErrorKind(fmt.Errorf("x: %w", ErrUnsupportedMedia)))
	require.Equal(t, "capture_device", ErrorKind(ErrCaptureDevice))
	require.Equal(t, "encoding", ErrorKind(ErrEncoding))
	require.Equal(t, "credential_missing", ErrorKind(ErrCredentialMissing))
	require.Equal(t, "transport", ErrorKind(&TransportError{Err: errors.New("reset")}))
	require.Equal(t, "malformed_response", ErrorKind(ErrMalformedResponse))
	require.Equal(t, "unknown", ErrorKind(errors.New("other")))
}
