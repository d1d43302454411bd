package dto

import (
	"time"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
)

type CreateWorkspaceRequest struct {
	Slug *string `json:"slug,omitempty" binding:"omitempty,min=1,max=64"`
	Name string  `json:"name" binding:"required,min=1,max=255"`
}

type WorkspaceResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
}

func ToWorkspaceResponse(ws *model.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Slug:        ws.Slug,
		OwnerUserID: ws.OwnerUserID,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required,oneof=owner admin member viewer"`
}

type ChangeMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin member viewer"`
}

type MemberResponse struct {
	JoinedAt    time.Time  `json:"joined_at"`
	Role        string     `json:"role"`
	InvitedBy   *uuid.UUID `json:"invited_by,omitempty"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	UserID      uuid.UUID  `json:"user_id"`
	IsActive    bool       `json:"is_active"`
}

func ToMemberResponse(m *model.WorkspaceMember) *MemberResponse {
	return &MemberResponse{
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		InvitedBy:   m.InvitedBy,
		IsActive:    m.IsActive,
		JoinedAt:    m.JoinedAt,
	}
}

func ToMemberResponses(members []model.WorkspaceMember) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, *ToMemberResponse(&members[i]))
	}
	return out
}
