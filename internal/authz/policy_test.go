package authz

import (
	"testing"

	"parley/internal/models"

	"github.com/stretchr/testify/assert"
)

func session(id uint, admin int) models.Session {
	return models.Session{
		User:            &models.User{ID: id, Username: "someone", IsAdmin: admin},
		IsAuthenticated: true,
	}
}

func TestCanModify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session models.Session
		ownerID uint
		want    bool
	}{
		{
			name:    "owner can modify own content",
			session: session(7, 0),
			ownerID: 7,
			want:    true,
		},
		{
			name:    "non-owner cannot modify",
			session: session(7, 0),
			ownerID: 8,
			want:    false,
		},
		{
			name:    "admin can modify anyone's content",
			session: session(1, 1),
			ownerID: 99,
			want:    true,
		},
		{
			name:    "anonymous cannot modify anything",
			session: models.LoggedOut(),
			ownerID: 7,
			want:    false,
		},
		{
			name: "flag without authentication does not count",
			session: models.Session{
				User:            &models.User{ID: 7, IsAdmin: 1},
				IsAuthenticated: false,
			},
			ownerID: 7,
			want:    false,
		},
		{
			name:    "authenticated without a user is denied",
			session: models.Session{IsAuthenticated: true},
			ownerID: 7,
			want:    false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanModify(tt.session, tt.ownerID))
		})
	}
}

func TestCanManageTopics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session models.Session
		want    bool
	}{
		{name: "admin", session: session(1, 1), want: true},
		{name: "regular member", session: session(2, 0), want: false},
		{name: "anonymous", session: models.LoggedOut(), want: false},
		{
			name: "admin flag without authentication",
			session: models.Session{
				User:            &models.User{ID: 1, IsAdmin: 1},
				IsAuthenticated: false,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanManageTopics(tt.session))
		})
	}
}
