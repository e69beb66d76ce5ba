package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowAllGrantsEverything(t *testing.T) {
	p := AllowAll()
	assert.True(t, p.Allows(Read, "Vehicle.Speed"))
	assert.True(t, p.Allows(Register, "Anything.At.All"))
	assert.False(t, p.Expired(time.Now().Add(100*time.Hour)))
}

func TestGlobGrant(t *testing.T) {
	p := New(map[Scope][]string{
		Read:       {"Vehicle.ADAS.*"},
		WriteValue: {"Vehicle.Speed"},
	}, time.Time{})

	assert.True(t, p.Allows(Read, "Vehicle.ADAS.ABS.IsActive"))
	assert.False(t, p.Allows(Read, "Vehicle.Cabin.Seat.Position"))
	assert.True(t, p.Allows(WriteValue, "Vehicle.Speed"))
	assert.False(t, p.Allows(WriteValue, "Vehicle.ADAS.ABS.IsActive"))
}

func TestExpiry(t *testing.T) {
	p := New(map[Scope][]string{Read: {"*"}}, time.Now().Add(-time.Minute))
	assert.True(t, p.Expired(time.Now()))
	assert.ErrorIs(t, Check(p, Read, "A", time.Now()), ErrPermissionExpired)
}

func TestDenied(t *testing.T) {
	p := New(nil, time.Time{})
	assert.ErrorIs(t, Check(p, Read, "A", time.Now()), ErrPermissionDenied)
}
