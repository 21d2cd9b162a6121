package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", "pic-profile-maker", time.Hour)
	user := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	tokenStr, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	id, err := m.Parse(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, time.Hour, m.Duration())
}

func TestTokenManager_Parse_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", "pic-profile-maker", time.Hour)
	user := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	expired, err := NewTokenManager("test-secret", "pic-profile-maker", -time.Minute).Issue(user)
	require.NoError(t, err)

	foreign, err := NewTokenManager("other-secret", "pic-profile-maker", time.Hour).Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
