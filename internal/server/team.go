package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/authorization"
	teamdomain "github.com/taskhive/taskhive/internal/team/domain"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateTeam(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tm, err := s.teamSvc.Create(c.Request.Context(), userID, teamdomain.CreateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tm)
}

func (s *Server) ListTeams(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	items, err := s.teamSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": items})
}

func (s *Server) GetTeam(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectTeam, authorization.ActionView) {
		return
	}

	tm, err := s.teamSvc.GetByID(c.Request.Context(), teamID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tm)
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) UpdateTeam(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectTeam, authorization.ActionUpdate) {
		return
	}

	tm, err := s.teamSvc.Update(c.Request.Context(), teamID, userID, teamdomain.UpdateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tm)
}

func (s *Server) ListTeamMembers(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !s.authorize(c, userID, teamID, authorization.ObjectMember, authorization.ActionView) {
		return
	}

	members, err := s.teamSvc.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) AddTeamMember(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	targetID, err := parseID(req.UserID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectMember, authorization.ActionMemberAdd) {
		return
	}

	member, err := s.teamSvc.AddMember(c.Request.Context(), teamID, targetID, teamdomain.Role(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (s *Server) RemoveTeamMember(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	// Leaving a team needs no grant; removing someone else does.
	if targetID != userID {
		if !s.authorize(c, userID, teamID, authorization.ObjectMember, authorization.ActionMemberRemove) {
			return
		}
	}

	if err := s.teamSvc.RemoveMember(c.Request.Context(), teamID, targetID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type transferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

func (s *Server) TransferTeamOwnership(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	newOwnerID, err := parseID(req.NewOwnerID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectTeam, authorization.ActionTeamTransfer) {
		return
	}

	member, err := s.teamSvc.TransferOwnership(c.Request.Context(), teamID, userID, newOwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

type createInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) CreateTeamInvite(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectInvite, authorization.ActionCreate) {
		return
	}

	invite, err := s.teamSvc.CreateInvite(c.Request.Context(), teamID, teamdomain.CreateInviteRequest{
		Email:     req.Email,
		Role:      teamdomain.Role(req.Role),
		InvitedBy: userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

func (s *Server) RevokeTeamInvite(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	token := c.Param("token")
	if token == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.authorize(c, userID, teamID, authorization.ObjectInvite, authorization.ActionInviteRevoke) {
		return
	}

	invite, err := s.teamSvc.RevokeInvite(c.Request.Context(), teamID, token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}

func (s *Server) AcceptTeamInvite(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	token := c.Param("token")
	if token == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	usr, err := s.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.teamSvc.AcceptInvite(c.Request.Context(), token, userID, usr.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}
