package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// MemberController handles member management endpoints
type MemberController struct {
	memberService *services.MemberService
}

// NewMemberController creates a new MemberController
func NewMemberController(memberService *services.MemberService) *MemberController {
	return &MemberController{
		memberService: memberService,
	}
}

// ListMembers lists the members visible to the caller
// @Summary List members
// @Description Directors see coordinators and volunteers, coordinators see volunteers. Newest first.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MemberResponse} "Members retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members [get]
func (c *MemberController) ListMembers(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	members, err := c.memberService.List(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(members))
}

// GetMember retrieves a member by ID
// @Summary Get member by ID
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} dto.APIResponse{data=dto.MemberResponse} "Member retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members/{id} [get]
func (c *MemberController) GetMember(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	member, err := c.memberService.Get(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(member))
}

// CreateMember handles member creation
// @Summary Create a new member
// @Description Creates the account, its address and its ministry memberships atomically
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMemberRequest true "Member information"
// @Success 201 {object} dto.APIResponse{data=dto.MemberResponse} "Member created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Role cannot create this user type"
// @Failure 409 {object} dto.ErrorResponse "Email, CPF or RG already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members [post]
func (c *MemberController) CreateMember(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.CreateMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	member, err := c.memberService.Create(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(member))
}

// UpdateMember handles member updates
// @Summary Update a member
// @Description Rewrites the member, its address and replaces its ministry set atomically
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param request body dto.UpdateMemberRequest true "Member information"
// @Success 200 {object} dto.APIResponse{data=dto.MemberResponse} "Member updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Member cannot be modified by caller"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Failure 409 {object} dto.ErrorResponse "Email, CPF or RG already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members/{id} [put]
func (c *MemberController) UpdateMember(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	member, err := c.memberService.Update(ctx.Request.Context(), identity, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(member))
}

// ToggleMemberStatus flips a member between active and inactive
// @Summary Toggle member status
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} dto.APIResponse{data=dto.MemberStatusResponse} "Status changed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Member cannot be modified by caller"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members/{id}/toggle-status [put]
func (c *MemberController) ToggleMemberStatus(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	status, err := c.memberService.ToggleStatus(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(status))
}

// DeleteMember deletes a member
// @Summary Delete a member
// @Tags members
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 204 "Member deleted"
// @Failure 400 {object} dto.ErrorResponse "Self deletion or member still linked to schedules"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Member cannot be modified by caller"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /members/{id} [delete]
func (c *MemberController) DeleteMember(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	if err := c.memberService.Delete(ctx.Request.Context(), identity, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
