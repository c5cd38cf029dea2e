package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

func user(id uint64) *models.User {
	u := &models.User{}
	u.ID = id
	return u
}

func staff(id uint64) *models.User {
	u := user(id)
	u.SiteAdmin = true
	return u
}

func project(members, admins []*models.User) *models.Project {
	p := &models.Project{}
	p.ID = 100
	for _, m := range members {
		p.Members = append(p.Members, *m)
	}
	for _, a := range admins {
		p.Admins = append(p.Admins, *a)
	}
	return p
}

func TestIsStaff(t *testing.T) {
	assert.False(t, IsStaff(nil))
	assert.False(t, IsStaff(user(1)))
	assert.True(t, IsStaff(staff(1)))

	curator := user(2)
	curator.SiteCurator = true
	assert.True(t, IsStaff(curator))

	writer := user(3)
	writer.APIWrite = true
	assert.True(t, IsStaff(writer))

	// an unsaved user carries no identity even with a flag set
	unsaved := &models.User{SiteAdmin: true}
	assert.False(t, IsStaff(unsaved))
}

func TestCanWriteUser(t *testing.T) {
	alice, bob := user(1), user(2)

	tests := []struct {
		name   string
		actor  *models.User
		target *models.User
		want   bool
	}{
		{"self", alice, alice, true},
		{"same id other instance", user(1), alice, true},
		{"other user", bob, alice, false},
		{"staff", staff(9), alice, true},
		{"anonymous", nil, alice, false},
		{"anonymous nil target", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanWriteUser(tt.actor, tt.target))
		})
	}
}

func TestCanCreateUser(t *testing.T) {
	assert.True(t, CanCreateUser(nil))
	assert.True(t, CanCreateUser(user(1)))
}

func TestCanHeartUser(t *testing.T) {
	alice, bob := user(1), user(2)

	assert.True(t, CanHeartUser(bob, alice))
	assert.False(t, CanHeartUser(nil, alice))
	assert.False(t, CanHeartUser(bob, nil))

	for _, actor := range []*models.User{alice, bob, staff(3)} {
		assert.False(t, CanHeartUser(actor, actor), "user %d hearting self", actor.ID)
	}
}

func TestCanUpdateAndDestroyUser(t *testing.T) {
	alice, bob := user(1), user(2)

	assert.True(t, CanUpdateUser(alice, alice))
	assert.False(t, CanUpdateUser(bob, alice))
	assert.False(t, CanUpdateUser(staff(3), alice))
	assert.False(t, CanUpdateUser(nil, alice))

	assert.True(t, CanDestroyUser(alice, alice))
	assert.False(t, CanDestroyUser(bob, alice))
	assert.False(t, CanDestroyUser(nil, alice))

	assert.True(t, CanUpdateProtectedUserFields(staff(3)))
	assert.False(t, CanUpdateProtectedUserFields(alice))
	assert.False(t, CanUpdateProtectedUserFields(nil))
}

func TestCanWriteProject(t *testing.T) {
	alice, bob, carol := user(1), user(2), user(3)
	p := project([]*models.User{alice, bob}, []*models.User{alice})

	assert.True(t, CanWriteProject(alice, p))
	assert.False(t, CanWriteProject(bob, p), "members are not leaders")
	assert.False(t, CanWriteProject(carol, p))
	assert.False(t, CanWriteProject(nil, p))
	assert.True(t, CanWriteProject(staff(4), p))
	assert.False(t, CanWriteProject(alice, nil))

	assert.True(t, CanCreateProject(carol))
	assert.False(t, CanCreateProject(nil))

	assert.True(t, CanHeartProject(carol, p))
	assert.False(t, CanHeartProject(nil, p))
}

func TestCanWriteGeneric(t *testing.T) {
	alice, bob := user(1), user(2)
	comment := &models.Comment{UserID: alice.ID}
	jr := &models.JoinRequest{UserID: bob.ID}

	assert.True(t, CanWriteGeneric(alice, comment))
	assert.False(t, CanWriteGeneric(bob, comment))
	assert.True(t, CanWriteGeneric(staff(5), comment))
	assert.False(t, CanWriteGeneric(nil, comment))

	assert.True(t, CanWriteJoinRequest(bob, jr))
	assert.False(t, CanWriteJoinRequest(alice, jr))

	var nilComment *models.Comment
	assert.False(t, CanWriteComment(alice, nilComment))
	assert.True(t, CanWriteComment(staff(5), nilComment))
}

func TestPostPredicates(t *testing.T) {
	leader, member, outsider := user(1), user(2), user(3)
	p := project([]*models.User{leader, member}, []*models.User{leader})

	private := &models.Post{Private: true, Project: *p}
	public := &models.Post{Private: false, Project: *p}

	tests := []struct {
		name        string
		actor       *models.User
		readPrivate bool
		write       bool
	}{
		{"leader", leader, true, true},
		{"member", member, true, false},
		{"outsider", outsider, false, false},
		{"staff", staff(4), true, true},
		{"anonymous", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.readPrivate, CanReadPrivateProjectPost(tt.actor, private))
			assert.Equal(t, tt.readPrivate, CanReadProjectPost(tt.actor, private))
			assert.True(t, CanReadProjectPost(tt.actor, public))
			assert.Equal(t, tt.write, CanWriteProjectPost(tt.actor, private))
		})
	}

	// a leader who is not listed as a member still reads private posts
	leaderOnly := project(nil, []*models.User{leader})
	assert.True(t, CanReadPrivateProjectPost(leader, &models.Post{Private: true, Project: *leaderOnly}))
}

func TestTagAndCategoryPredicates(t *testing.T) {
	alice := user(1)

	assert.True(t, CanCreateTag(alice))
	assert.False(t, CanCreateTag(nil))
	assert.False(t, CanWriteTag(alice))
	assert.True(t, CanWriteTag(staff(2)))

	assert.False(t, CanCreateCategory(alice))
	assert.True(t, CanCreateCategory(staff(2)))
	assert.False(t, CanWriteCategory(alice))
	assert.True(t, CanWriteCategory(staff(2)))
}

func TestCanReviewJoinRequest(t *testing.T) {
	leader, requester := user(1), user(2)
	p := project([]*models.User{leader}, []*models.User{leader})
	jr := &models.JoinRequest{UserID: requester.ID, Project: *p}

	assert.True(t, CanReviewJoinRequest(leader, jr))
	assert.False(t, CanReviewJoinRequest(requester, jr))
	assert.True(t, CanReviewJoinRequest(staff(3), jr))
	assert.False(t, CanReviewJoinRequest(nil, jr))
}
