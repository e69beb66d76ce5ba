package tokendecoder

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/authz"
)

func TestDecodeGrantsAndExpiry(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	d, err := NewFromBase64(base64.StdEncoding.EncodeToString(pub))
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"read":  []any{"Vehicle.*"},
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	require.NoError(t, err)

	perms, err := d.Decode(signed)
	require.NoError(t, err)
	require.True(t, perms.Allows(authz.Read, "Vehicle.Speed"))
	require.False(t, perms.Allows(authz.WriteValue, "Vehicle.Speed"))
	require.False(t, perms.Expired(time.Now()))
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	d, err := NewFromBase64(base64.StdEncoding.EncodeToString(otherPub))
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{}).SignedString(priv)
	require.NoError(t, err)

	_, err = d.Decode(signed)
	require.Error(t, err)
}
