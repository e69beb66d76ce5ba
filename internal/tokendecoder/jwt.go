// Package tokendecoder is the external collaborator that turns a bearer
// JWT into the authz.Permissions value the core consumes; per the
// specification's scope, the core never validates tokens itself.
//
// Grounded on the teacher's JWTAuthenticator: ed25519 public key loaded
// from base64-encoded PEM-less bytes, jwt.Parse with a keyfunc that
// pins the signing method, and claim extraction helpers that tolerate
// absent or oddly-shaped fields rather than failing the whole decode.
package tokendecoder

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/authz"
)

// Decoder validates bearer tokens signed with EdDSA (ed25519) and turns
// their claims into authz.Permissions.
type Decoder struct {
	publicKey ed25519.PublicKey
}

// NewFromBase64 builds a Decoder from a base64-encoded ed25519 public
// key, the format the broker's --jwt-public-key file is expected to
// hold.
func NewFromBase64(encoded string) (*Decoder, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("tokendecoder: decoding public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("tokendecoder: public key has %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return &Decoder{publicKey: ed25519.PublicKey(raw)}, nil
}

// Decode validates rawToken and extracts its claims into a
// authz.Permissions value. Scope grants are read from the top-level
// claims "read", "write-value", "write-actuator-target" and "register",
// each a list of path patterns such as ["Vehicle.*"]; a missing claim
// simply grants nothing for that scope.
func (d *Decoder) Decode(rawToken string) (authz.Permissions, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("tokendecoder: unexpected signing method %v", t.Header["alg"])
		}
		return d.publicKey, nil
	})
	if err != nil {
		return authz.Permissions{}, fmt.Errorf("tokendecoder: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Permissions{}, fmt.Errorf("tokendecoder: unexpected claims type")
	}

	grants := map[authz.Scope][]string{
		authz.Read:                extractPatterns(claims, "read"),
		authz.WriteValue:          extractPatterns(claims, "write-value"),
		authz.WriteActuatorTarget: extractPatterns(claims, "write-actuator-target"),
		authz.Register:            extractPatterns(claims, "register"),
	}

	expiresAt := extractExpiry(claims)
	return authz.New(grants, expiresAt), nil
}

func extractPatterns(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]any)
	if !ok {
		return nil
	}
	patterns := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			patterns = append(patterns, s)
		}
	}
	return patterns
}

func extractExpiry(claims jwt.MapClaims) time.Time {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
