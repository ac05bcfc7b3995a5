package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/authorization"
	taskdomain "github.com/taskhive/taskhive/internal/task/domain"
)

type createTaskRequest struct {
	ListID      string  `json:"list_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
}

func (s *Server) CreateTask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	listID, err := parseID(req.ListID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	assignedTo, err := optionalID(req.AssignedTo)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTask, authorization.ActionCreate) {
		return
	}

	tsk, err := s.taskSvc.Create(c.Request.Context(), userID, taskdomain.CreateTaskRequest{
		ProjectID:   projectID,
		ListID:      listID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tsk)
}

func (s *Server) ListProjectTasks(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	_, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTask, authorization.ActionView) {
		return
	}

	tasks, err := s.taskSvc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) GetTask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tsk, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTask, authorization.ActionView) {
		return
	}

	c.JSON(http.StatusOK, tsk)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	Unassign    bool    `json:"unassign"`
}

func (s *Server) UpdateTask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	assignedTo, err := optionalID(req.AssignedTo)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTask, authorization.ActionUpdate) {
		return
	}

	tsk, err := s.taskSvc.Update(c.Request.Context(), taskID, userID, taskdomain.UpdateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignedTo,
		Unassign:    req.Unassign,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tsk)
}

type moveTaskRequest struct {
	ToListID string `json:"to_list_id"`
}

func (s *Server) MoveTask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	toListID, err := parseID(req.ToListID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTask, authorization.ActionTaskMove) {
		return
	}

	tsk, err := s.taskSvc.Move(c.Request.Context(), taskID, userID, toListID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tsk)
}

type addSubtaskRequest struct {
	Title string `json:"title"`
}

func (s *Server) AddSubtask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectSubtask, authorization.ActionCreate) {
		return
	}

	sub, err := s.taskSvc.AddSubtask(c.Request.Context(), taskID, userID, req.Title)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (s *Server) ListSubtasks(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectSubtask, authorization.ActionView) {
		return
	}

	subtasks, err := s.taskSvc.ListSubtasks(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

type updateSubtaskRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

func (s *Server) UpdateSubtask(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	subtaskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForSubtask(c.Request.Context(), subtaskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectSubtask, authorization.ActionUpdate) {
		return
	}

	sub, err := s.taskSvc.UpdateSubtask(c.Request.Context(), subtaskID, userID, taskdomain.UpdateSubtaskRequest{
		Title: req.Title,
		Done:  req.Done,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

type createCommentRequest struct {
	Body string `json:"body"`
}

func (s *Server) CreateComment(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectComment, authorization.ActionCreate) {
		return
	}

	comment, err := s.commentSvc.Create(c.Request.Context(), taskID, userID, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) ListComments(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	_, teamID, err := s.teamForTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectComment, authorization.ActionView) {
		return
	}

	comments, err := s.commentSvc.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

func (s *Server) UpdateComment(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	existing, err := s.commentSvc.GetByID(c.Request.Context(), commentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	_, teamID, err := s.teamForTask(c.Request.Context(), existing.TaskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectComment, authorization.ActionUpdate) {
		return
	}

	comment, err := s.commentSvc.Update(c.Request.Context(), commentID, userID, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func optionalID(raw *string) (*snowflake.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
