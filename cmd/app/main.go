package main

import (
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/db"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/media"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/proto"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/transport"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			db.NewGormClient,
			graph.NewGraph,
			media.NewStore,

			service.NewAuth,
			service.NewUsers,
			service.NewProjects,
			service.NewJoinRequests,
			service.NewTags,
			service.NewCategories,
			service.NewComments,
			service.NewPosts,

			transport.NewServices,
			transport.NewHTTPServer,
		),
		proto.Module,
		fx.Invoke(func(*transport.HTTPServer) {}),
	).Run()
}
