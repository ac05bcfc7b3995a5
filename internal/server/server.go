package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskhive/taskhive/internal/activity"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/auth/token"
	"github.com/taskhive/taskhive/internal/authorization"
	"github.com/taskhive/taskhive/internal/board"
	boarddomain "github.com/taskhive/taskhive/internal/board/domain"
	"github.com/taskhive/taskhive/internal/comment"
	commentdomain "github.com/taskhive/taskhive/internal/comment/domain"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/jobs"
	"github.com/taskhive/taskhive/internal/mailer"
	"github.com/taskhive/taskhive/internal/project"
	projectdomain "github.com/taskhive/taskhive/internal/project/domain"
	"github.com/taskhive/taskhive/internal/task"
	taskdomain "github.com/taskhive/taskhive/internal/task/domain"
	"github.com/taskhive/taskhive/internal/team"
	teamdomain "github.com/taskhive/taskhive/internal/team/domain"
	"github.com/taskhive/taskhive/internal/user"
	userdomain "github.com/taskhive/taskhive/internal/user/domain"
	"github.com/taskhive/taskhive/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	telemetry.Module,
	fx.Provide(registerGin),
	auth.Module,
	authorization.Module,
	activity.Module,
	user.Module,
	team.Module,
	project.Module,
	board.Module,
	task.Module,
	comment.Module,
	mailer.Module,
	jobs.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(metrics *telemetry.Metrics) *gin.Engine {
	return NewEngine(metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	genID       *snowflake.Node
	tokens      *token.Issuer
	authzSvc    authorization.Service
	userSvc     userdomain.Service
	teamSvc     teamdomain.Service
	projectSvc  projectdomain.Service
	boardSvc    boarddomain.Service
	taskSvc     taskdomain.Service
	commentSvc  commentdomain.Service
	activitySvc activitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	GenID       *snowflake.Node
	Tokens      *token.Issuer
	AuthzSvc    authorization.Service
	UserSvc     userdomain.Service
	TeamSvc     teamdomain.Service
	ProjectSvc  projectdomain.Service
	BoardSvc    boarddomain.Service
	TaskSvc     taskdomain.Service
	CommentSvc  commentdomain.Service
	ActivitySvc activitydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		genID:       p.GenID,
		tokens:      p.Tokens,
		authzSvc:    p.AuthzSvc,
		userSvc:     p.UserSvc,
		teamSvc:     p.TeamSvc,
		projectSvc:  p.ProjectSvc,
		boardSvc:    p.BoardSvc,
		taskSvc:     p.TaskSvc,
		commentSvc:  p.CommentSvc,
		activitySvc: p.ActivitySvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/auth")
	grp.POST("/register", s.Register)
	grp.POST("/login", s.Login)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	api.GET("/me", s.Me)
	api.PATCH("/me", s.UpdateProfile)

	api.POST("/teams", s.CreateTeam)
	api.GET("/teams", s.ListTeams)
	api.GET("/teams/:id", s.GetTeam)
	api.PATCH("/teams/:id", s.UpdateTeam)
	api.GET("/teams/:id/members", s.ListTeamMembers)
	api.POST("/teams/:id/members", s.AddTeamMember)
	api.DELETE("/teams/:id/members/:userID", s.RemoveTeamMember)
	api.POST("/teams/:id/transfer", s.TransferTeamOwnership)
	api.POST("/teams/:id/invites", s.CreateTeamInvite)
	api.DELETE("/teams/:id/invites/:token", s.RevokeTeamInvite)
	api.POST("/invites/:token/accept", s.AcceptTeamInvite)

	api.POST("/teams/:id/projects", s.CreateProject)
	api.GET("/teams/:id/projects", s.ListProjects)
	api.GET("/projects/:id", s.GetProject)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.GET("/projects/:id/members", s.ListProjectMembers)
	api.POST("/projects/:id/members", s.AddProjectMember)
	api.GET("/projects/:id/activity", s.ProjectActivity)
	api.POST("/projects/:id/boards", s.CreateBoard)
	api.GET("/projects/:id/boards", s.ListBoards)
	api.POST("/projects/:id/tasks", s.CreateTask)
	api.GET("/projects/:id/tasks", s.ListProjectTasks)

	api.GET("/boards/:id/lists", s.ListBoardLists)
	api.POST("/boards/:id/lists", s.AddBoardList)

	api.GET("/tasks/:id", s.GetTask)
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.POST("/tasks/:id/move", s.MoveTask)
	api.POST("/tasks/:id/subtasks", s.AddSubtask)
	api.GET("/tasks/:id/subtasks", s.ListSubtasks)
	api.POST("/tasks/:id/comments", s.CreateComment)
	api.GET("/tasks/:id/comments", s.ListComments)

	api.PATCH("/subtasks/:id", s.UpdateSubtask)
	api.PATCH("/comments/:id", s.UpdateComment)
}
