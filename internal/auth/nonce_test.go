package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "0x52908400098527886e0f7030069857d2e4169ee7"

func TestNonceStoreIssueAndConsume(t *testing.T) {
	s := NewNonceStore(0)

	nonce := s.Issue(testAddr)
	require.NotEmpty(t, nonce)

	got, ok := s.Consume(testAddr)
	require.True(t, ok)
	assert.Equal(t, nonce, got)
}

func TestNonceStoreSingleUse(t *testing.T) {
	s := NewNonceStore(0)
	s.Issue(testAddr)

	_, ok := s.Consume(testAddr)
	require.True(t, ok)

	_, ok = s.Consume(testAddr)
	assert.False(t, ok, "a consumed nonce must not be consumable again")
}

func TestNonceStoreUnknownAddress(t *testing.T) {
	s := NewNonceStore(0)

	_, ok := s.Consume(testAddr)
	assert.False(t, ok)
}

func TestNonceStoreReissueOverwrites(t *testing.T) {
	s := NewNonceStore(0)

	first := s.Issue(testAddr)
	second := s.Issue(testAddr)
	require.NotEqual(t, first, second)

	got, ok := s.Consume(testAddr)
	require.True(t, ok)
	assert.Equal(t, second, got, "only the latest nonce is live")

	_, ok = s.Consume(testAddr)
	assert.False(t, ok)
}

func TestNonceStoreCaseInsensitiveAddress(t *testing.T) {
	s := NewNonceStore(0)

	nonce := s.Issue("0x52908400098527886E0F7030069857D2E4169EE7")
	got, ok := s.Consume(testAddr)
	require.True(t, ok)
	assert.Equal(t, nonce, got)
}

func TestNonceStoreTTL(t *testing.T) {
	s := NewNonceStore(time.Millisecond)
	s.Issue(testAddr)

	time.Sleep(10 * time.Millisecond)

	_, ok := s.Consume(testAddr)
	assert.False(t, ok, "an expired nonce must not be consumable")
}

func TestNonceStoreIndependentAddresses(t *testing.T) {
	s := NewNonceStore(0)
	other := "0x8617e340b3d01fa5f11f306f4090fd50e238070d"

	a := s.Issue(testAddr)
	b := s.Issue(other)

	gotB, ok := s.Consume(other)
	require.True(t, ok)
	assert.Equal(t, b, gotB)

	gotA, ok := s.Consume(testAddr)
	require.True(t, ok)
	assert.Equal(t, a, gotA)
}
