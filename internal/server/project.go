package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/authorization"
	projectdomain "github.com/taskhive/taskhive/internal/project/domain"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateProject(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionCreate) {
		return
	}

	proj, err := s.projectSvc.Create(c.Request.Context(), teamID, userID, projectdomain.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proj)
}

func (s *Server) ListProjects(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionView) {
		return
	}

	projects, err := s.projectSvc.ListByTeam(c.Request.Context(), teamID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) GetProject(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	proj, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionView) {
		return
	}

	c.JSON(http.StatusOK, proj)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) UpdateProject(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionUpdate) {
		return
	}

	proj, err := s.projectSvc.Update(c.Request.Context(), projectID, userID, projectdomain.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, proj)
}

func (s *Server) ListProjectMembers(c *gin.Context) {
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
	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionView) {
		return
	}

	members, err := s.projectSvc.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type addProjectMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) AddProjectMember(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	targetID, err := parseID(req.UserID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectProject, authorization.ActionUpdate) {
		return
	}

	member, err := s.projectSvc.AddMember(c.Request.Context(), projectID, targetID, projectdomain.ProjectRole(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (s *Server) ProjectActivity(c *gin.Context) {
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
	if !s.authorize(c, userID, teamID, authorization.ObjectActivity, authorization.ActionView) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := s.activitySvc.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

type createBoardRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateBoard(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectBoard, authorization.ActionCreate) {
		return
	}

	brd, err := s.boardSvc.Create(c.Request.Context(), projectID, req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, brd)
}

func (s *Server) ListBoards(c *gin.Context) {
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
	if !s.authorize(c, userID, teamID, authorization.ObjectBoard, authorization.ActionView) {
		return
	}

	boards, err := s.boardSvc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

func (s *Server) ListBoardLists(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	_, teamID, err := s.teamForBoard(c.Request.Context(), boardID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectBoard, authorization.ActionView) {
		return
	}

	lists, err := s.boardSvc.Lists(c.Request.Context(), boardID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

type addListRequest struct {
	Name string `json:"name"`
}

func (s *Server) AddBoardList(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, teamID, err := s.teamForBoard(c.Request.Context(), boardID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectBoard, authorization.ActionUpdate) {
		return
	}

	list, err := s.boardSvc.AddList(c.Request.Context(), boardID, req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, list)
}
