package transport

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
)

type (
	ProjectDetailResp struct {
		models.ProjectResp
		Hearters     []models.UserRef         `json:"hearters"`
		Comments     []models.CommentResp     `json:"comments"`
		Posts        []models.PostResp        `json:"posts"`
		JoinRequests []models.JoinRequestResp `json:"join_requests"`
	}

	ProjectHeartResp struct {
		User    models.UserRef    `json:"user"`
		Project models.ProjectRef `json:"project"`
		Hearted bool              `json:"hearted"`
	}
)

// newProjectDetailResp hides the content of private posts the actor may not read.
func newProjectDetailResp(actor *models.User, d *service.ProjectDetail) ProjectDetailResp {
	posts := make([]models.PostResp, len(d.Posts))
	for i := range d.Posts {
		posts[i] = models.NewPostResp(&d.Posts[i], permission.CanReadProjectPost(actor, &d.Posts[i]))
	}
	return ProjectDetailResp{
		ProjectResp:  models.NewProjectResp(d.Project),
		Hearters:     models.NewUserRefs(d.Hearters),
		Comments:     models.NewCommentResps(d.Comments),
		Posts:        posts,
		JoinRequests: models.NewJoinRequestResps(d.JoinRequests),
	}
}

func newProjectHeartResp(r *service.ProjectHeartResult) ProjectHeartResp {
	return ProjectHeartResp{
		User: models.NewUserRef(r.User),
		Project: models.ProjectRef{
			ID:     r.Project.ID,
			Title:  r.Project.Title,
			Hearts: r.Project.Hearts,
		},
		Hearted: r.Hearted,
	}
}

func (s *HTTPServer) ProjectList(c *fiber.Ctx) error {
	q := service.ProjectQuery{}
	if err := BindQueryAndValidate(c, &q); err != nil {
		return err
	}
	projects, err := s.projects.List(c.Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(models.NewProjectResps(projects))
}

func (s *HTTPServer) ProjectCreate(c *fiber.Ctx) error {
	req := service.ProjectCreate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := s.projects.Create(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewProjectResp(project))
}

func (s *HTTPServer) ProjectGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := s.projects.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(newProjectDetailResp(GetActor(c), detail))
}

func (s *HTTPServer) ProjectUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.ProjectUpdate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := s.projects.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewProjectResp(project))
}

func (s *HTTPServer) ProjectDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.projects.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) ProjectHeart(c *fiber.Ctx) error {
	req := service.ProjectHeartInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := s.projects.Heart(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(newProjectHeartResp(res))
}

func (s *HTTPServer) ProjectToggleHeart(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	res, err := s.projects.ToggleHeart(c.Context(), GetActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(newProjectHeartResp(res))
}

type roleChange func(ctx *fiber.Ctx, actor *models.User, projectID, userID uint64) (*models.Project, error)

// roleHandler adapts the member and admin edge operations, which share their path shape.
func (s *HTTPServer) roleHandler(change roleChange) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, err := GetAndParseParam(c, "id")
		if err != nil {
			return err
		}
		userID, err := GetAndParseParam(c, "userID")
		if err != nil {
			return err
		}
		project, err := change(c, GetActor(c), projectID, userID)
		if err != nil {
			return err
		}
		return c.JSON(models.NewProjectResp(project))
	}
}

func (s *HTTPServer) ProjectAddMember(c *fiber.Ctx) error {
	return s.roleHandler(func(c *fiber.Ctx, actor *models.User, projectID, userID uint64) (*models.Project, error) {
		return s.projects.AddMember(c.Context(), actor, projectID, userID)
	})(c)
}

func (s *HTTPServer) ProjectRemoveMember(c *fiber.Ctx) error {
	return s.roleHandler(func(c *fiber.Ctx, actor *models.User, projectID, userID uint64) (*models.Project, error) {
		return s.projects.RemoveMember(c.Context(), actor, projectID, userID)
	})(c)
}

func (s *HTTPServer) ProjectAddAdmin(c *fiber.Ctx) error {
	return s.roleHandler(func(c *fiber.Ctx, actor *models.User, projectID, userID uint64) (*models.Project, error) {
		return s.projects.AddAdmin(c.Context(), actor, projectID, userID)
	})(c)
}

func (s *HTTPServer) ProjectRemoveAdmin(c *fiber.Ctx) error {
	return s.roleHandler(func(c *fiber.Ctx, actor *models.User, projectID, userID uint64) (*models.Project, error) {
		return s.projects.RemoveAdmin(c.Context(), actor, projectID, userID)
	})(c)
}

//////// join requests

func (s *HTTPServer) JoinRequestList(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	requests, err := s.projects.JoinRequests(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewJoinRequestResps(requests))
}

func (s *HTTPServer) JoinRequestCreate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.JoinRequestCreate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	jr, err := s.joinRequests.Request(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewJoinRequestResp(jr))
}

func (s *HTTPServer) JoinRequestWithdraw(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.joinRequests.Withdraw(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) JoinRequestApprove(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	jr, err := s.joinRequests.Approve(c.Context(), GetActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewJoinRequestResp(jr))
}

func (s *HTTPServer) JoinRequestReject(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	jr, err := s.joinRequests.Reject(c.Context(), GetActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewJoinRequestResp(jr))
}
