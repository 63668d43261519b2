package types

import "time"

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateOrganizationRequestBody struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description,omitempty" binding:"max=1000"`
	Website     string `json:"website,omitempty" binding:"max=100"`
}

type UpdateOrganizationRequestBody struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=1000"`
	Website     *string `json:"website,omitempty" binding:"omitempty,max=100"`
	LogoURL     *string `json:"logo_url,omitempty" binding:"omitempty,max=500"`
}

type AddOrganizationMemberRequestBody struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,orgrole"`
}

type UpdateOrganizationMemberRoleRequestBody struct {
	Role string `json:"role" binding:"required,orgrole"`
}

type PermissionQuery struct {
	Action string `form:"action" binding:"required"`
}

type CreateTeamRequestBody struct {
	OrganizationID uint   `json:"organization_id" binding:"required"`
	Name           string `json:"name" binding:"required,max=100"`
	Description    string `json:"description,omitempty" binding:"max=500"`
	Color          string `json:"color,omitempty" binding:"omitempty,hexcolor"`
}

type UpdateTeamRequestBody struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" binding:"omitempty,hexcolor"`
}

type CreateProjectRequestBody struct {
	OrganizationID uint       `json:"organization_id" binding:"required"`
	TeamID         *uint      `json:"team_id,omitempty"`
	Name           string     `json:"name" binding:"required,max=200"`
	Description    string     `json:"description,omitempty" binding:"max=2000"`
	Priority       string     `json:"priority,omitempty" binding:"omitempty,priority"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Color          string     `json:"color,omitempty" binding:"omitempty,hexcolor"`
}

type UpdateProjectRequestBody struct {
	Name        *string    `json:"name,omitempty" binding:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,priority"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Color       *string    `json:"color,omitempty" binding:"omitempty,hexcolor"`
}

type ProjectsQueryFilters struct {
	OrganizationID uint `form:"organization_id"`
}

type UpcomingTasksQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

type SearchTasksQuery struct {
	Term      string `form:"q" binding:"required,max=200"`
	ProjectID uint   `form:"project_id"`
}

type UpdateProjectStatusRequestBody struct {
	Status string `json:"status" binding:"required,projectstatus"`
}

type AddProjectMemberRequestBody struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty" binding:"omitempty,projectrole"`
}

type UpdateProjectMemberRoleRequestBody struct {
	Role string `json:"role" binding:"required,projectrole"`
}

type CreateTaskStatusRequestBody struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Name        string `json:"name" binding:"required,max=100"`
	Color       string `json:"color,omitempty" binding:"omitempty,hexcolor"`
	Order       int    `json:"order"`
	IsDefault   bool   `json:"is_default"`
	IsCompleted bool   `json:"is_completed"`
}

type UpdateTaskStatusRequestBody struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Color       *string `json:"color,omitempty" binding:"omitempty,hexcolor"`
	Order       *int    `json:"order,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

type ReorderTaskStatusesRequestBody struct {
	StatusIDs []uint `json:"status_ids" binding:"required"`
}

type CreateTaskRequestBody struct {
	ProjectID        uint       `json:"project_id" binding:"required"`
	TaskStatusID     *uint      `json:"task_status_id,omitempty"`
	Title            string     `json:"title" binding:"required,max=200"`
	Description      string     `json:"description,omitempty" binding:"max=4000"`
	AssignedToUserID *string    `json:"assigned_to_user_id,omitempty"`
	Priority         string     `json:"priority,omitempty" binding:"omitempty,priority"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	EstimatedHours   *float64   `json:"estimated_hours,omitempty" binding:"omitempty,gte=0"`
	Tags             []string   `json:"tags,omitempty"`
}

type UpdateTaskRequestBody struct {
	Title                *string    `json:"title,omitempty" binding:"omitempty,max=200"`
	Description          *string    `json:"description,omitempty" binding:"omitempty,max=4000"`
	Priority             *string    `json:"priority,omitempty" binding:"omitempty,priority"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	EstimatedHours       *float64   `json:"estimated_hours,omitempty" binding:"omitempty,gte=0"`
	CompletionPercentage *float64   `json:"completion_percentage,omitempty"`
	Tags                 *[]string  `json:"tags,omitempty"`
}

type MoveTaskRequestBody struct {
	TaskStatusID uint `json:"task_status_id" binding:"required"`
}

type UpdateTaskProgressRequestBody struct {
	CompletionPercentage *float64 `json:"completion_percentage" binding:"required"`
}

type AssignTaskRequestBody struct {
	AssigneeID *string `json:"assignee_id"`
}

type CreateCommentRequestBody struct {
	Content         string `json:"content" binding:"required,max=4000"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}

type LogTimeRequestBody struct {
	Hours       float64    `json:"hours" binding:"required,gt=0,lte=24"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty" binding:"max=1000"`
	IsBillable  *bool      `json:"is_billable,omitempty"`
}
