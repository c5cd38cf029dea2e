package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

type (
	JoinRequests struct {
		graph  *graph.Graph
		logger *zap.SugaredLogger
	}

	JoinRequestCreate struct {
		Message string `json:"message" validate:"max=1000"`
	}
)

func NewJoinRequests(g *graph.Graph, l *zap.SugaredLogger) *JoinRequests {
	return &JoinRequests{
		graph:  g,
		logger: l,
	}
}

func (s *JoinRequests) Request(ctx context.Context, actor *models.User, projectID uint64, in JoinRequestCreate) (*models.JoinRequest, error) {
	return s.graph.RequestJoin(ctx, actor, projectID, in.Message)
}

func (s *JoinRequests) Withdraw(ctx context.Context, actor *models.User, id uint64) error {
	return s.graph.WithdrawJoinRequest(ctx, actor, id)
}

func (s *JoinRequests) Approve(ctx context.Context, actor *models.User, id uint64) (*models.JoinRequest, error) {
	return s.graph.ApproveJoinRequest(ctx, actor, id)
}

func (s *JoinRequests) Reject(ctx context.Context, actor *models.User, id uint64) (*models.JoinRequest, error) {
	return s.graph.RejectJoinRequest(ctx, actor, id)
}
