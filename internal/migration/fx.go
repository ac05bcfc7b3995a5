package migration

import (
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	boarddomain "github.com/taskhive/taskhive/internal/board/domain"
	commentdomain "github.com/taskhive/taskhive/internal/comment/domain"
	projectdomain "github.com/taskhive/taskhive/internal/project/domain"
	taskdomain "github.com/taskhive/taskhive/internal/task/domain"
	teamdomain "github.com/taskhive/taskhive/internal/team/domain"
	userdomain "github.com/taskhive/taskhive/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if conn.Dialector.Name() != "postgres" {
			return conn.AutoMigrate(
				&userdomain.User{},
				&teamdomain.Team{},
				&teamdomain.Membership{},
				&teamdomain.Invite{},
				&projectdomain.Project{},
				&projectdomain.ProjectMember{},
				&boarddomain.Board{},
				&boarddomain.List{},
				&taskdomain.Task{},
				&taskdomain.Subtask{},
				&commentdomain.Comment{},
				&activitydomain.Entry{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
