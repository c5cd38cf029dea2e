package graph

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

const denyProjectWrite = "You do not have permission to modify this project."

// AddMember inserts the user into the project's member set. Adding an existing member
// is a no-op.
func (g *Graph) AddMember(ctx context.Context, actor *models.User, projectID, userID uint64) error {
	return g.editRole(ctx, actor, projectID, userID, func(tx *gorm.DB) error {
		return insertRole(tx, &models.ProjectMember{ProjectID: projectID, UserID: userID})
	})
}

// AddAdmin inserts the user into the project's admin set. Adding an existing admin
// is a no-op.
func (g *Graph) AddAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) error {
	return g.editRole(ctx, actor, projectID, userID, func(tx *gorm.DB) error {
		return insertRole(tx, &models.ProjectAdmin{ProjectID: projectID, UserID: userID})
	})
}

func (g *Graph) RemoveMember(ctx context.Context, actor *models.User, projectID, userID uint64) error {
	return g.editRole(ctx, actor, projectID, userID, func(tx *gorm.DB) error {
		return deleteRole(tx, &models.ProjectMember{}, projectID, userID)
	})
}

func (g *Graph) RemoveAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) error {
	return g.editRole(ctx, actor, projectID, userID, func(tx *gorm.DB) error {
		return deleteRole(tx, &models.ProjectAdmin{}, projectID, userID)
	})
}

func (g *Graph) editRole(ctx context.Context, actor *models.User, projectID, userID uint64, edit func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		if err := tx.Preload("Admins").First(&project, projectID).Error; err != nil {
			return notFound(err, "project", "No project exists with this id.")
		}
		if !permission.CanWriteProject(actor, &project) {
			return apperr.Deny(actor, denyProjectWrite)
		}
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return notFound(err, "user", "No user exists with this id.")
		}
		return edit(tx)
	})
}

// InsertMembers adds the users to the project's member set inside an existing
// transaction. The caller is responsible for authorization.
func InsertMembers(tx *gorm.DB, projectID uint64, userIDs ...uint64) error {
	for _, id := range userIDs {
		if err := insertRole(tx, &models.ProjectMember{ProjectID: projectID, UserID: id}); err != nil {
			return err
		}
	}
	return nil
}

// InsertAdmins is InsertMembers for the admin set.
func InsertAdmins(tx *gorm.DB, projectID uint64, userIDs ...uint64) error {
	for _, id := range userIDs {
		if err := insertRole(tx, &models.ProjectAdmin{ProjectID: projectID, UserID: id}); err != nil {
			return err
		}
	}
	return nil
}

func insertRole(tx *gorm.DB, row interface{}) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return errors.Wrap(err, "insert project role")
	}
	return nil
}

func deleteRole(tx *gorm.DB, model interface{}, projectID, userID uint64) error {
	if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(model).Error; err != nil {
		return errors.Wrap(err, "delete project role")
	}
	return nil
}

func isMember(tx *gorm.DB, projectID, userID uint64) (bool, error) {
	var count int64
	err := tx.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count membership")
	}
	return count > 0, nil
}

/////// join requests

// RequestJoin moves the actor from NonMember to Pending for the project.
func (g *Graph) RequestJoin(ctx context.Context, actor *models.User, projectID uint64, message string) (*models.JoinRequest, error) {
	if !permission.CanCreateJoinRequest(actor) {
		return nil, apperr.Deny(actor, "You cannot request to join this project.")
	}

	jr := models.JoinRequest{
		Message:   message,
		UserID:    actor.ID,
		ProjectID: projectID,
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Project{}, projectID).Error; err != nil {
			return notFound(err, "project", "No project exists with this id.")
		}
		member, err := isMember(tx, projectID, actor.ID)
		if err != nil {
			return err
		}
		if member {
			return apperr.Conflict("project", "You are already a member of this project.")
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&jr)
		if res.Error != nil {
			return errors.Wrap(res.Error, "create join request")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("project", "You have already requested to join this project.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	g.logger.Infow("join requested", "user", actor.ID, "project", projectID, "request", jr.ID)
	return &jr, nil
}

// WithdrawJoinRequest moves the owner back from Pending to NonMember.
func (g *Graph) WithdrawJoinRequest(ctx context.Context, actor *models.User, requestID uint64) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jr := models.JoinRequest{}
		if err := tx.First(&jr, requestID).Error; err != nil {
			return notFound(err, "id", "No join request exists with this id.")
		}
		if !permission.CanWriteJoinRequest(actor, &jr) {
			return apperr.Deny(actor, "You do not have permission to modify this join request.")
		}
		return errors.Wrap(tx.Delete(&jr).Error, "delete join request")
	})
}

// ApproveJoinRequest moves the requester from Pending to Member.
func (g *Graph) ApproveJoinRequest(ctx context.Context, actor *models.User, requestID uint64) (*models.JoinRequest, error) {
	return g.reviewJoinRequest(ctx, actor, requestID, true)
}

// RejectJoinRequest moves the requester from Pending back to NonMember.
func (g *Graph) RejectJoinRequest(ctx context.Context, actor *models.User, requestID uint64) (*models.JoinRequest, error) {
	return g.reviewJoinRequest(ctx, actor, requestID, false)
}

func (g *Graph) reviewJoinRequest(ctx context.Context, actor *models.User, requestID uint64, approve bool) (*models.JoinRequest, error) {
	jr := models.JoinRequest{}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project.Admins").First(&jr, requestID).Error; err != nil {
			return notFound(err, "id", "No join request exists with this id.")
		}
		if !permission.CanReviewJoinRequest(actor, &jr) {
			return apperr.Deny(actor, denyProjectWrite)
		}
		if approve {
			if err := InsertMembers(tx, jr.ProjectID, jr.UserID); err != nil {
				return err
			}
		}
		return errors.Wrap(tx.Delete(&models.JoinRequest{}, jr.ID).Error, "delete join request")
	})
	if err != nil {
		return nil, err
	}
	g.logger.Infow("join request reviewed", "request", jr.ID, "project", jr.ProjectID, "user", jr.UserID, "approved", approve)
	return &jr, nil
}
