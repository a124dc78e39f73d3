package securefile

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchFunc func(ctx context.Context, moduleID uint) (int, *Payload, error)

func (f fetchFunc) FetchSecureFile(ctx context.Context, moduleID uint) (int, *Payload, error) {
	return f(ctx, moduleID)
}

func respond(status int, p *Payload, err error) Fetcher {
	return fetchFunc(func(context.Context, uint) (int, *Payload, error) { return status, p, err })
}

func TestLoadRegistersPayload(t *testing.T) {
	reg := NewRegistry()
	p := &Payload{Data: []byte("pdf"), ContentType: "application/pdf", Access: "full"}

	handle, release, err := Load(context.Background(), respond(http.StatusOK, p, nil), reg, 4)
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.Regexp(t, `^blob:[0-9a-f-]{36}$`, handle)

	got, ok := reg.Resolve(handle)
	require.True(t, ok)
	assert.Same(t, p, got)

	release()
	release()
	_, ok = reg.Resolve(handle)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Revocations())
	assert.Zero(t, reg.Len())
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		f    Fetcher
		want error
	}{
		{"forbidden", respond(http.StatusForbidden, nil, nil), ErrNotAuthorized},
		{"unauthorized", respond(http.StatusUnauthorized, nil, nil), ErrLoadFailed},
		{"server error", respond(http.StatusInternalServerError, nil, nil), ErrLoadFailed},
		{"transport", respond(0, nil, errors.New("connection reset")), ErrLoadFailed},
		{"empty body", respond(http.StatusOK, nil, nil), ErrLoadFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			handle, release, err := Load(context.Background(), tc.f, reg, 9)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, handle)
			assert.Nil(t, release)
			assert.Zero(t, reg.Len())
		})
	}
}

func TestHandlesAreUnique(t *testing.T) {
	reg := NewRegistry()
	a, ra := reg.Register(&Payload{})
	b, rb := reg.Register(&Payload{})
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, reg.Len())

	ra()
	assert.Equal(t, 1, reg.Len())
	rb()
	assert.Equal(t, 2, reg.Revocations())
}
