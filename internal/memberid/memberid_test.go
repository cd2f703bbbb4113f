package memberid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	good := []string{"000000", "123456", "999999", "000042"}
	bad := []string{"", "12345", "1234567", "12a456", " 12345", "١٢٣٤٥٦", "12345\n"}
	for _, s := range good {
		assert.True(t, Valid(s), s)
	}
	for _, s := range bad {
		assert.False(t, Valid(s), s)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "000001", Format(1))
	assert.Equal(t, "123456", Format(123456))
}

func TestEmailRoundTrip(t *testing.T) {
	email := Email(Format(123), "skygym.local")
	assert.Equal(t, "000123@skygym.local", email)

	n, ok := FromEmail("000123@SkyGym.Local", "skygym.local")
	assert.True(t, ok)
	assert.Equal(t, 123, n)
}

func TestFromEmail_Rejects(t *testing.T) {
	for _, email := range []string{"admin@skygym.local", "000123@other.local", "0001234@skygym.local", "000123"} {
		_, ok := FromEmail(email, "skygym.local")
		assert.False(t, ok, email)
	}
}
