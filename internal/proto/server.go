package proto

import (
	"context"
	"encoding/json"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
)

type (
	UserReader interface {
		Get(ctx context.Context, id uint64) (*service.UserDetail, error)
	}

	ProjectReader interface {
		Get(ctx context.Context, id uint64) (*service.ProjectDetail, error)
		List(ctx context.Context, q service.ProjectQuery) ([]models.Project, error)
	}

	ThinkspaceServerImpl struct {
		users    UserReader
		projects ProjectReader
		logger   *zap.SugaredLogger
	}
)

func NewServer(users UserReader, projects ProjectReader, logger *zap.SugaredLogger) *ThinkspaceServerImpl {
	return &ThinkspaceServerImpl{
		users:    users,
		projects: projects,
		logger:   logger,
	}
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, users *service.Users, projects *service.Projects, logger *zap.SugaredLogger) *ThinkspaceServerImpl {
	instance := NewServer(users, projects, logger)

	grpcServer := grpc.NewServer()
	RegisterThinkspaceServer(grpcServer, instance)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.Host+":"+cfg.GRPCPort)
			if err != nil {
				return errors.Wrap(err, "listen grpc")
			}
			logger.Infow("Starting GRPC server.", "listen", lis.Addr().String())
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("grpc server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func (s *ThinkspaceServerImpl) GetUser(ctx context.Context, request *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	detail, err := s.users.Get(ctx, request.GetValue())
	if err != nil {
		return nil, s.statusError(err)
	}
	return toStruct(struct {
		models.UserResp
		Hearters []models.UserRef `json:"hearters"`
		Heartees []models.UserRef `json:"heartees"`
	}{
		UserResp: models.NewUserResp(detail.User),
		Hearters: models.NewUserRefs(detail.Hearters),
		Heartees: models.NewUserRefs(detail.Heartees),
	})
}

// GetProject leaves out posts; their visibility depends on an actor the RPC surface
// does not have.
func (s *ThinkspaceServerImpl) GetProject(ctx context.Context, request *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	detail, err := s.projects.Get(ctx, request.GetValue())
	if err != nil {
		return nil, s.statusError(err)
	}
	return toStruct(struct {
		models.ProjectResp
		Hearters []models.UserRef     `json:"hearters"`
		Comments []models.CommentResp `json:"comments"`
	}{
		ProjectResp: models.NewProjectResp(detail.Project),
		Hearters:    models.NewUserRefs(detail.Hearters),
		Comments:    models.NewCommentResps(detail.Comments),
	})
}

func (s *ThinkspaceServerImpl) ListProjects(ctx context.Context, request *structpb.Struct) (*structpb.ListValue, error) {
	fields := request.GetFields()
	q := service.ProjectQuery{
		Paging: service.Paging{
			Page:    positive(fields["page"].GetNumberValue(), service.MaxPage),
			PerPage: positive(fields["per_page"].GetNumberValue(), service.MaxPerPage),
		},
		Search: fields["search"].GetStringValue(),
	}
	projects, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, s.statusError(err)
	}

	items := make([]interface{}, 0, len(projects))
	for _, p := range models.NewProjectResps(projects) {
		m, err := toMap(p)
		if err != nil {
			return nil, s.statusError(err)
		}
		items = append(items, m)
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, s.statusError(errors.Wrap(err, "build list"))
	}
	return list, nil
}

func (s *ThinkspaceServerImpl) statusError(err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr) && appErr.Kind == apperr.ErrNotFound:
		return status.Error(codes.NotFound, appErr.Message)
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrBadRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Errorw("grpc call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// toMap goes through JSON so the RPC payloads use the same field names as the HTTP API.
func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	return m, nil
}

// positive converts a JSON number to a count in [0, limit]. Anything below 1, NaN
// included, is 0 so the service default applies.
func positive(v float64, limit uint64) uint64 {
	if !(v >= 1) {
		return 0
	}
	if v >= float64(limit) {
		return limit
	}
	return uint64(v)
}
