package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_RoundTrip(t *testing.T) {
	svc := NewArgon2HashService()

	password := "0perator#Secret9"
	hash, err := svc.Hash(password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "encoded hash must carry the argon2id prefix")
	assert.Contains(t, hash, "m=65536,t=1,p=4", "encoded hash must carry the tuning params")

	match, err := svc.Verify(password, hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_RejectsWrongPassword(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("the-real-one")
	require.NoError(t, err)

	match, err := svc.Verify("the-wrong-one", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2HashService_SaltsDiffer(t *testing.T) {
	svc := NewArgon2HashService()

	first, err := svc.Hash("repeat-me")
	require.NoError(t, err)
	second, err := svc.Hash("repeat-me")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash must use a fresh salt")

	// Both still verify independently.
	for _, h := range []string{first, second} {
		match, err := svc.Verify("repeat-me", h)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestArgon2HashService_EmptyPassword(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("")
	require.NoError(t, err)

	match, err := svc.Verify("", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4", // missing salt and digest segments
	} {
		_, err := svc.Verify("whatever", bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestArgon2HashService_TamperedHashFailsVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("tamper-target")
	require.NoError(t, err)

	// Flip a character inside the digest segment. The final base64
	// character carries unused padding bits, so tamper the one before it.
	i := len(hash) - 2
	replacement := byte('A')
	if hash[i] == 'A' {
		replacement = 'B'
	}
	tampered := hash[:i] + string(replacement) + hash[i+1:]

	match, err := svc.Verify("tamper-target", tampered)
	require.NoError(t, err)
	assert.False(t, match, "tampered digest must not verify")
}

func TestArgon2HashService_LongPassword(t *testing.T) {
	svc := NewArgon2HashService()

	long := strings.Repeat("z", 1024)
	hash, err := svc.Hash(long)
	require.NoError(t, err)

	match, err := svc.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, match)
}
