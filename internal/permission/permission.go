/*Package permission decides whether an actor may perform an action on a resource.

Every predicate is a pure function of the actor and the resource as loaded for the
current request. The actor is a *models.User; nil means an anonymous request. Predicates
never fail: anonymous actors simply never match an identity or a role.

Predicates that inspect project roles expect Project.Admins (and Project.Members for
private post reads) to be preloaded.
*/
package permission

import (
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

// Owned is any resource with a single owning user.
type Owned interface {
	OwnerID() uint64
}

func IsAuthenticated(actor *models.User) bool {
	return actor != nil && actor.ID != 0
}

func IsStaff(actor *models.User) bool {
	return IsAuthenticated(actor) && actor.IsStaff()
}

// Same reports whether actor and user are the same stored identity.
func Same(actor, user *models.User) bool {
	if !IsAuthenticated(actor) || user == nil {
		return false
	}
	return actor.ID == user.ID
}

func contains(users []models.User, actor *models.User) bool {
	if !IsAuthenticated(actor) {
		return false
	}
	for i := range users {
		if users[i].ID == actor.ID {
			return true
		}
	}
	return false
}

func IsProjectMember(actor *models.User, project *models.Project) bool {
	return project != nil && contains(project.Members, actor)
}

func IsProjectAdmin(actor *models.User, project *models.Project) bool {
	return project != nil && contains(project.Admins, actor)
}

/////// users

func CanWriteUser(actor, user *models.User) bool {
	return IsStaff(actor) || Same(actor, user)
}

func CanCreateUser(actor *models.User) bool {
	return true
}

// CanHeartUser denies self-hearts, which keeps the heart relation irreflexive.
func CanHeartUser(actor, target *models.User) bool {
	return IsAuthenticated(actor) && target != nil && actor.ID != target.ID
}

func CanUpdateUser(actor, user *models.User) bool {
	return Same(actor, user)
}

func CanDestroyUser(actor, user *models.User) bool {
	return Same(actor, user)
}

// CanUpdateProtectedUserFields gates site_admin, site_curator and api_write.
func CanUpdateProtectedUserFields(actor *models.User) bool {
	return IsStaff(actor)
}

/////// projects

func CanWriteProject(actor *models.User, project *models.Project) bool {
	return IsStaff(actor) || IsProjectAdmin(actor, project)
}

func CanCreateProject(actor *models.User) bool {
	return IsAuthenticated(actor)
}

func CanHeartProject(actor *models.User, project *models.Project) bool {
	return IsAuthenticated(actor) && project != nil
}

/////// owned resources

func CanWriteGeneric(actor *models.User, obj Owned) bool {
	if IsStaff(actor) {
		return true
	}
	return IsAuthenticated(actor) && obj != nil && obj.OwnerID() == actor.ID
}

/////// posts

func CanReadPrivateProjectPost(actor *models.User, post *models.Post) bool {
	if IsStaff(actor) {
		return true
	}
	if post == nil {
		return false
	}
	return IsProjectMember(actor, &post.Project) || IsProjectAdmin(actor, &post.Project)
}

func CanReadProjectPost(actor *models.User, post *models.Post) bool {
	if post == nil {
		return false
	}
	return !post.Private || CanReadPrivateProjectPost(actor, post)
}

func CanWriteProjectPost(actor *models.User, post *models.Post) bool {
	if IsStaff(actor) {
		return true
	}
	return post != nil && IsProjectAdmin(actor, &post.Project)
}

/////// tags and categories

func CanCreateTag(actor *models.User) bool {
	return IsAuthenticated(actor)
}

func CanWriteTag(actor *models.User) bool {
	return IsStaff(actor)
}

func CanCreateCategory(actor *models.User) bool {
	return IsStaff(actor)
}

func CanWriteCategory(actor *models.User) bool {
	return IsStaff(actor)
}

/////// comments

func CanCreateComment(actor *models.User) bool {
	return IsAuthenticated(actor)
}

func CanWriteComment(actor *models.User, comment *models.Comment) bool {
	return CanWriteGeneric(actor, comment)
}

/////// join requests

func CanCreateJoinRequest(actor *models.User) bool {
	return IsAuthenticated(actor)
}

func CanWriteJoinRequest(actor *models.User, jr *models.JoinRequest) bool {
	return CanWriteGeneric(actor, jr)
}

// CanReviewJoinRequest gates approval and rejection; jr.Project.Admins must be loaded.
func CanReviewJoinRequest(actor *models.User, jr *models.JoinRequest) bool {
	if IsStaff(actor) {
		return true
	}
	return jr != nil && IsProjectAdmin(actor, &jr.Project)
}
