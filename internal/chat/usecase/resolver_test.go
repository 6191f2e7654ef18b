package usecase

import (
	"errors"
	"testing"

	authdomain "subwatch-backend/internal/auth/domain"
	"subwatch-backend/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserReader struct {
	user *authdomain.User
	err  error
}

func (f *fakeUserReader) FindByID(string) (*authdomain.User, error) { return f.user, f.err }

type fakeDecryptor struct {
	plaintext string
	err       error
}

func (f *fakeDecryptor) Decrypt(string) (string, error) { return f.plaintext, f.err }

type fakeBalanceReader struct {
	balance int
	err     error
}

func (f *fakeBalanceReader) GetBalance(string) (int, error) { return f.balance, f.err }

func resolverFixture(user *authdomain.User, dec *fakeDecryptor, balance int, operatorKey, creditsKey string) *AccessResolver {
	return NewAccessResolver(
		&fakeUserReader{user: user},
		dec,
		&fakeBalanceReader{balance: balance},
		operatorKey,
		creditsKey,
	)
}

func userWithKey() *authdomain.User {
	return &authdomain.User{ID: "user-1", EncryptedGroqKey: "sealed"}
}

func userWithoutKey() *authdomain.User {
	return &authdomain.User{ID: "user-1"}
}

func TestResolve_UserKeyWinsOverCredits(t *testing.T) {
	// Both a valid stored key and a positive balance: the user's own key wins
	r := resolverFixture(userWithKey(), &fakeDecryptor{plaintext: "gsk_user"}, 500, "gsk_operator", "gsk_platform")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierBYOK, access.Tier)
	assert.Equal(t, "gsk_user", access.APIKey)
	assert.Equal(t, ai.DefaultModel, access.Model)
	assert.False(t, access.Metered())
}

func TestResolve_DecryptFailureFallsToOperator(t *testing.T) {
	r := resolverFixture(userWithKey(), &fakeDecryptor{err: errors.New("cipher: message authentication failed")}, 0, "gsk_operator", "")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierOperator, access.Tier)
	assert.Equal(t, "gsk_operator", access.APIKey)
}

func TestResolve_DecryptFailureFallsToCredits(t *testing.T) {
	// No operator key configured: the broken stored key falls through two tiers
	r := resolverFixture(userWithKey(), &fakeDecryptor{err: errors.New("bad ciphertext")}, 250, "", "gsk_platform")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierCredits, access.Tier)
	assert.Equal(t, "gsk_platform", access.APIKey)
	assert.True(t, access.Metered())
}

func TestResolve_DecryptFailureWithNothingLeftIsNone(t *testing.T) {
	r := resolverFixture(userWithKey(), &fakeDecryptor{err: errors.New("bad ciphertext")}, 0, "", "gsk_platform")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierNone, access.Tier)
	assert.Empty(t, access.APIKey)
}

func TestResolve_CreditsUseDefaultModelWhenNoneRequested(t *testing.T) {
	r := resolverFixture(userWithoutKey(), &fakeDecryptor{}, 100, "", "gsk_platform")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierCredits, access.Tier)
	assert.Equal(t, ai.DefaultModel, access.Model)
}

func TestResolve_CreditsRejectDisallowedModel(t *testing.T) {
	// A model outside the credits allowlist is never silently substituted
	r := resolverFixture(userWithoutKey(), &fakeDecryptor{}, 100, "", "gsk_platform")

	access, err := r.Resolve("user-1", "some-experimental-model")
	require.NoError(t, err)

	assert.Equal(t, TierNone, access.Tier)
}

func TestResolve_ByokAllowsAnyModel(t *testing.T) {
	// On the user's own key the allowlist does not apply
	r := resolverFixture(userWithKey(), &fakeDecryptor{plaintext: "gsk_user"}, 0, "", "")

	access, err := r.Resolve("user-1", "some-experimental-model")
	require.NoError(t, err)

	assert.Equal(t, TierBYOK, access.Tier)
	assert.Equal(t, "some-experimental-model", access.Model)
}

func TestResolve_ZeroBalanceSkipsCredits(t *testing.T) {
	r := resolverFixture(userWithoutKey(), &fakeDecryptor{}, 0, "", "gsk_platform")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierNone, access.Tier)
}

func TestResolve_NoPlatformKeySkipsCredits(t *testing.T) {
	// Credits cannot be spent without a platform key to spend them through
	r := resolverFixture(userWithoutKey(), &fakeDecryptor{}, 1000, "", "")

	access, err := r.Resolve("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, TierNone, access.Tier)
}

func TestResolve_BalanceLookupErrorAborts(t *testing.T) {
	r := NewAccessResolver(
		&fakeUserReader{user: userWithoutKey()},
		&fakeDecryptor{},
		&fakeBalanceReader{err: errors.New("db down")},
		"",
		"gsk_platform",
	)

	_, err := r.Resolve("user-1", "")
	assert.Error(t, err)
}
