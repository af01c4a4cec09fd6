package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalNotifiesChanges(t *testing.T) {
	l, err := NewLocal("")
	require.NoError(t, err)

	var seen []string
	stop := l.OnAuthChange(func(uid string) { seen = append(seen, uid) })

	require.NoError(t, l.SignIn("u1"))
	require.NoError(t, l.SignIn("u1"))
	l.SignOut()
	stop()
	require.NoError(t, l.SignIn("u2"))

	assert.Equal(t, []string{"", "u1", ""}, seen)
	assert.Equal(t, "u2", l.CurrentUserID())
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("abc123"))
	for _, bad := range []string{"", " ", "a/b", " a"} {
		assert.ErrorIs(t, ValidateUserID(bad), ErrInvalidUser, "uid %q", bad)
	}
	_, err := NewLocal("a/b")
	assert.ErrorIs(t, err, ErrInvalidUser)
}
