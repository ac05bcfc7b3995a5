package server

import (
	"context"

	"github.com/bwmarrin/snowflake"
	boarddomain "github.com/taskhive/taskhive/internal/board/domain"
	projectdomain "github.com/taskhive/taskhive/internal/project/domain"
	taskdomain "github.com/taskhive/taskhive/internal/task/domain"
)

// Authorization is team-scoped, so nested resources are walked back up to
// their owning team before the grant check.

func (s *Server) teamForProject(ctx context.Context, projectID snowflake.ID) (*projectdomain.Project, snowflake.ID, error) {
	proj, err := s.projectSvc.GetByID(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	return proj, proj.TeamID, nil
}

func (s *Server) teamForBoard(ctx context.Context, boardID snowflake.ID) (*boarddomain.Board, snowflake.ID, error) {
	brd, err := s.boardSvc.GetByID(ctx, boardID)
	if err != nil {
		return nil, 0, err
	}
	_, teamID, err := s.teamForProject(ctx, brd.ProjectID)
	if err != nil {
		return nil, 0, err
	}
	return brd, teamID, nil
}

func (s *Server) teamForTask(ctx context.Context, taskID snowflake.ID) (*taskdomain.Task, snowflake.ID, error) {
	tsk, err := s.taskSvc.GetByID(ctx, taskID)
	if err != nil {
		return nil, 0, err
	}
	_, teamID, err := s.teamForProject(ctx, tsk.ProjectID)
	if err != nil {
		return nil, 0, err
	}
	return tsk, teamID, nil
}

func (s *Server) teamForSubtask(ctx context.Context, subtaskID snowflake.ID) (*taskdomain.Subtask, snowflake.ID, error) {
	sub, err := s.taskSvc.GetSubtaskByID(ctx, subtaskID)
	if err != nil {
		return nil, 0, err
	}
	_, teamID, err := s.teamForTask(ctx, sub.TaskID)
	if err != nil {
		return nil, 0, err
	}
	return sub, teamID, nil
}
