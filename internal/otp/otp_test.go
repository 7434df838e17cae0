package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time { return time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC) }

func TestVerifySucceedsWithCorrectValue(t *testing.T) {
	s := &Store{}
	s.Issue("E1", "123456", fixedNow())
	assert.True(t, s.Verify("E1", "123456", fixedNow()))
}

func TestVerifyConsumesEntryOnSuccess(t *testing.T) {
	s := &Store{}
	s.Issue("E1", "123456", fixedNow())
	require := assert.New(t)
	require.True(s.Verify("E1", "123456", fixedNow()))
	require.False(s.Verify("E1", "123456", fixedNow())) // already consumed
}

func TestVerifyFailsAfterMaxAttempts(t *testing.T) {
	s := &Store{}
	s.Issue("E1", "123456", fixedNow())
	assert.False(t, s.Verify("E1", "wrong1", fixedNow()))
	assert.False(t, s.Verify("E1", "wrong2", fixedNow()))
	assert.False(t, s.Verify("E1", "wrong3", fixedNow())) // 3rd attempt exhausts the cap
	assert.False(t, s.Verify("E1", "123456", fixedNow())) // entry gone even with the right value now
}

func TestVerifyFailsAfterExpiry(t *testing.T) {
	s := &Store{}
	s.Issue("E1", "123456", fixedNow())
	later := fixedNow().Add(6 * time.Minute)
	assert.False(t, s.Verify("E1", "123456", later))
}

func TestVerifyUnknownEmployeeFails(t *testing.T) {
	s := &Store{}
	assert.False(t, s.Verify("GHOST", "123456", fixedNow()))
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestClearRemovesPendingOTP(t *testing.T) {
	s := &Store{}
	s.Issue("E1", "123456", fixedNow())
	s.Clear("E1")
	assert.False(t, s.Verify("E1", "123456", fixedNow()))
}
