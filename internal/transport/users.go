package transport

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
)

type (
	TokenResp struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
		ID          uint64 `json:"id"`
	}

	UserDetailResp struct {
		models.UserResp
		Hearters        []models.UserRef         `json:"hearters"`
		Heartees        []models.UserRef         `json:"heartees"`
		HeartedProjects []models.ProjectRef      `json:"hearted_projects"`
		MemberProjects  []models.ProjectRef      `json:"member_projects"`
		AdminProjects   []models.ProjectRef      `json:"admin_projects"`
		JoinRequests    []models.JoinRequestResp `json:"join_requests"`
	}

	UserHeartResp struct {
		Hearter models.UserResp `json:"hearter"`
		Heartee models.UserResp `json:"heartee"`
		Hearted bool            `json:"hearted"`
	}
)

func newUserDetailResp(d *service.UserDetail) UserDetailResp {
	return UserDetailResp{
		UserResp:        models.NewUserResp(d.User),
		Hearters:        models.NewUserRefs(d.Hearters),
		Heartees:        models.NewUserRefs(d.Heartees),
		HeartedProjects: models.NewProjectRefs(d.HeartedProjects),
		MemberProjects:  models.NewProjectRefs(d.MemberProjects),
		AdminProjects:   models.NewProjectRefs(d.AdminProjects),
		JoinRequests:    models.NewJoinRequestResps(d.JoinRequests),
	}
}

func newUserHeartResp(r *service.UserHeartResult) UserHeartResp {
	return UserHeartResp{
		Hearter: models.NewUserResp(r.Hearter),
		Heartee: models.NewUserResp(r.Heartee),
		Hearted: r.Hearted,
	}
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	req := service.Credentials{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	token, err := s.auth.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(TokenResp{
		AccessToken: token.AccessToken,
		Username:    token.Username,
		ID:          token.ID,
	})
}

func (s *HTTPServer) UserList(c *fiber.Ctx) error {
	q := service.UserQuery{}
	if err := BindQueryAndValidate(c, &q); err != nil {
		return err
	}
	users, err := s.users.List(c.Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResps(users))
}

func (s *HTTPServer) UserRegister(c *fiber.Ctx) error {
	req := service.UserCreate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := s.users.Register(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResp(user))
}

func (s *HTTPServer) UserGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := s.users.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(newUserDetailResp(detail))
}

func (s *HTTPServer) UserUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.UserUpdate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := s.users.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResp(user))
}

func (s *HTTPServer) UserDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.users.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UserSetImage accepts a multipart upload in the "image" field.
func (s *HTTPServer) UserSetImage(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.Invalid("image", "Missing data for required field.")
	}
	if fh.Size > s.cfg.MediaMaxBytes {
		return apperr.Invalid("image", fmt.Sprintf("The uploaded file is larger than %d bytes.", s.cfg.MediaMaxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "open uploaded file")
	}
	defer f.Close()

	user, err := s.users.SetImage(c.Context(), GetActor(c), id, fh.Filename, fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResp(user))
}

func (s *HTTPServer) UserHeart(c *fiber.Ctx) error {
	req := service.UserHeartInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := s.users.Heart(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(newUserHeartResp(res))
}

func (s *HTTPServer) UserToggleHeart(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	res, err := s.users.ToggleHeart(c.Context(), GetActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(newUserHeartResp(res))
}
