package mail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
)

var complete = SMTPConfig{
	FromName:    "Trattoria",
	FromAddress: "orders@trattoria.test",
	Username:    "orders@trattoria.test",
	Password:    "app-password",
}

func TestMissingNamesFields(t *testing.T) {
	assert.Empty(t, complete.Missing())
	assert.Equal(t, []string{"fromName", "fromAddress", "username", "password"}, SMTPConfig{}.Missing())

	partial := complete
	partial.Password = " "
	assert.Equal(t, []string{"password"}, partial.Missing())
}

func TestRegistryCachesPerRestaurant(t *testing.T) {
	built := map[string]int{}
	reg := NewRegistry(func(id string, _ SMTPConfig) (Transport, error) {
		built[id]++
		return &Recorder{}, nil
	})

	a1, err := reg.Get("a", complete)
	require.NoError(t, err)
	a2, err := reg.Get("a", SMTPConfig{})
	require.NoError(t, err)
	b, err := reg.Get("b", complete)
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, built)

	reg.Forget("a")
	_, err = reg.Get("a", complete)
	require.NoError(t, err)
	assert.Equal(t, 2, built["a"])
}

func TestRegistryIncompleteConfig(t *testing.T) {
	reg := NewRegistry(func(string, SMTPConfig) (Transport, error) { return &Recorder{}, nil })

	_, err := reg.Get("r1", SMTPConfig{FromName: "x", FromAddress: "x@y.z"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.EConfiguration))
	assert.Equal(t, "incomplete email configuration: missing username, password", apperr.Message(err))
}

func TestRegistryFallback(t *testing.T) {
	var used SMTPConfig
	reg := NewRegistry(func(_ string, cfg SMTPConfig) (Transport, error) {
		used = cfg
		return &Recorder{}, nil
	}, WithFallback(func() SMTPConfig { return complete }))

	_, err := reg.Get("r1", SMTPConfig{})
	require.NoError(t, err)
	assert.Equal(t, complete, used)

	incomplete := NewRegistry(nil, WithFallback(func() SMTPConfig { return SMTPConfig{} }))
	_, err = incomplete.Get("r1", SMTPConfig{})
	assert.True(t, apperr.Is(err, apperr.EConfiguration))
}

func TestRegistryFactoryError(t *testing.T) {
	reg := NewRegistry(func(string, SMTPConfig) (Transport, error) { return nil, errors.New("bad host") })
	_, err := reg.Get("r1", complete)
	assert.True(t, apperr.Is(err, apperr.EConfiguration))
}

func TestRawHeaders(t *testing.T) {
	raw := string(To("a@x.test", "b@x.test").CC("c@x.test").Subject("New order").Body("<p>hi</p>").Raw("Trattoria", "orders@trattoria.test"))

	assert.Contains(t, raw, "From: Trattoria <orders@trattoria.test>\r\n")
	assert.Contains(t, raw, "To: a@x.test, b@x.test\r\n")
	assert.Contains(t, raw, "Cc: c@x.test\r\n")
	assert.Contains(t, raw, "Subject: New order\r\n")
	assert.Contains(t, raw, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, raw, "\r\n\r\n<p>hi</p>")
}
