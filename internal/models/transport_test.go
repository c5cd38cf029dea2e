package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserResp_OmitsPassword(t *testing.T) {
	u := User{
		GormForkedModel: GormForkedModel{ID: 1},
		Username:        "alice",
		Password:        "$2a$04$hash",
		ImageKey:        "users/1/a.png",
	}
	b, err := json.Marshal(NewUserResp(&u))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "$2a$04$hash")
	assert.NotContains(t, string(b), "users/1/a.png")
}

func TestNewCommentResp_Anonymous(t *testing.T) {
	alice := User{GormForkedModel: GormForkedModel{ID: 1}, Username: "alice"}

	signed := NewCommentResp(&Comment{Content: "hi", User: alice, UserID: 1})
	require.NotNil(t, signed.User)
	assert.Equal(t, "alice", signed.User.Username)

	anon := NewCommentResp(&Comment{Content: "hi", Anonymous: true, User: alice, UserID: 1})
	assert.Nil(t, anon.User)
	b, err := json.Marshal(anon)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "alice")
	assert.NotContains(t, string(b), `"user"`)
}

func TestNewPostResp_HidesUnreadableContent(t *testing.T) {
	p := Post{Content: "members only", Private: true}

	hidden := NewPostResp(&p, false)
	assert.Nil(t, hidden.Content)
	b, err := json.Marshal(hidden)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "members only")

	shown := NewPostResp(&p, true)
	require.NotNil(t, shown.Content)
	assert.Equal(t, "members only", *shown.Content)
}

func TestIsStaff(t *testing.T) {
	var anonymous *User
	assert.False(t, anonymous.IsStaff())
	assert.False(t, (&User{}).IsStaff())
	assert.True(t, (&User{SiteAdmin: true}).IsStaff())
	assert.True(t, (&User{SiteCurator: true}).IsStaff())
	assert.True(t, (&User{APIWrite: true}).IsStaff())
}
