package services

import (
	"errors"
	"testing"

	"inkfeed/app/auth"
	"inkfeed/app/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnershipGuard(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com", "Owner")
	other := f.user(t, "other@example.com", "Other")
	post := f.createPost(t, owner, "Owned post")
	guard := NewOwnershipGuard(f.posts)

	tests := []struct {
		name     string
		identity auth.Identity
		postID   string
		wantErr  error
	}{
		{name: "owner", identity: owner, postID: post.ID},
		{name: "other user", identity: other, postID: post.ID, wantErr: domain.ErrForbidden},
		{name: "anonymous", identity: auth.Anonymous, postID: post.ID, wantErr: domain.ErrUnauthenticated},
		{name: "rejected credential", identity: auth.Rejected(domain.Unauthenticated("Invalid credential.")), postID: post.ID, wantErr: domain.ErrUnauthenticated},
		{name: "missing post", identity: owner, postID: "missing", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.Authorize(tt.identity, tt.postID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, post.ID, got.ID)
			assert.Equal(t, owner.UserID, got.CreatorID)
		})
	}

	t.Run("anonymous never reads the store", func(t *testing.T) {
		f.posts.GetErr = errors.New("store must not be read")
		defer func() { f.posts.GetErr = nil }()

		_, err := guard.Authorize(auth.Anonymous, post.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("store failure", func(t *testing.T) {
		f.posts.GetErr = errors.New("disk on fire")
		defer func() { f.posts.GetErr = nil }()

		_, err := guard.Authorize(owner, post.ID)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.Equal(t, "internal server error", domain.As(err).PublicMessage())
	})
}
