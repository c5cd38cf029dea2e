package transport

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
)

func (s *HTTPServer) TagList(c *fiber.Ctx) error {
	tags, err := s.tags.List(c.Context(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(models.NewTagResps(tags))
}

func (s *HTTPServer) TagCreate(c *fiber.Ctx) error {
	req := service.TagInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	tag, err := s.tags.Create(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewTagResp(tag))
}

func (s *HTTPServer) TagUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.TagInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	tag, err := s.tags.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewTagResp(tag))
}

func (s *HTTPServer) TagDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.tags.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

////////

func (s *HTTPServer) CategoryList(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(models.NewCategoryResps(categories))
}

func (s *HTTPServer) CategoryCreate(c *fiber.Ctx) error {
	req := service.CategoryInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := s.categories.Create(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewCategoryResp(category))
}

func (s *HTTPServer) CategoryUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.CategoryInput{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := s.categories.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewCategoryResp(category))
}

func (s *HTTPServer) CategoryDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.categories.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

////////

func (s *HTTPServer) CommentList(c *fiber.Ctx) error {
	q := service.CommentQuery{}
	if err := BindQueryAndValidate(c, &q); err != nil {
		return err
	}
	comments, err := s.comments.List(c.Context(), GetActor(c), q)
	if err != nil {
		return err
	}
	return c.JSON(models.NewCommentResps(comments))
}

func (s *HTTPServer) CommentCreate(c *fiber.Ctx) error {
	req := service.CommentCreate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := s.comments.Create(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewCommentResp(comment))
}

func (s *HTTPServer) CommentUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.CommentUpdate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := s.comments.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.NewCommentResp(comment))
}

func (s *HTTPServer) CommentDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.comments.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

////////

func (s *HTTPServer) postResp(c *fiber.Ctx, post *models.Post) models.PostResp {
	return models.NewPostResp(post, permission.CanReadProjectPost(GetActor(c), post))
}

func (s *HTTPServer) PostList(c *fiber.Ctx) error {
	q := service.PostQuery{}
	if err := BindQueryAndValidate(c, &q); err != nil {
		return err
	}
	posts, err := s.posts.List(c.Context(), q)
	if err != nil {
		return err
	}
	resp := make([]models.PostResp, len(posts))
	for i := range posts {
		resp[i] = s.postResp(c, &posts[i])
	}
	return c.JSON(resp)
}

func (s *HTTPServer) PostGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	post, err := s.posts.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(s.postResp(c, post))
}

func (s *HTTPServer) PostCreate(c *fiber.Ctx) error {
	req := service.PostCreate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := s.posts.Create(c.Context(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(s.postResp(c, post))
}

func (s *HTTPServer) PostUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.PostUpdate{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := s.posts.Update(c.Context(), GetActor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(s.postResp(c, post))
}

func (s *HTTPServer) PostDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.posts.Delete(c.Context(), GetActor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
