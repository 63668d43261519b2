package main

import (
	"net/http"
	"taskflow/src/controllers"
	"taskflow/src/types"

	"github.com/gin-gonic/gin"
)

func projectHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/projects", func(ctx *gin.Context) {
			var filters types.ProjectsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			projects, err := svc().Projects.List(ctx.Request.Context(), controllers.CurrentUser(ctx), filters.OrganizationID)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": projects, "count": len(projects)})
		}).
		POST("/projects", func(ctx *gin.Context) {
			var body types.CreateProjectRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			project, err := svc().Projects.Create(ctx.Request.Context(), controllers.CurrentUser(ctx), &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": project})
		}).
		GET("/projects/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			project, err := svc().Projects.Get(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": project})
		}).
		PATCH("/projects/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateProjectRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			project, err := svc().Projects.Update(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": project})
		}).
		PUT("/projects/:id/status", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateProjectStatusRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			project, err := svc().Projects.ChangeStatus(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": project})
		}).
		DELETE("/projects/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := svc().Projects.Delete(ctx.Request.Context(), controllers.CurrentUser(ctx), id); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/projects/:id/stats", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			stats, err := svc().Projects.Stats(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		}).
		GET("/projects/:id/members", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			members, err := svc().Projects.ListMembers(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": members, "count": len(members)})
		}).
		POST("/projects/:id/members", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.AddProjectMemberRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			member, err := svc().Projects.AddMember(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": member})
		}).
		PATCH("/projects/:id/members/:userId", func(ctx *gin.Context) {
			params, ok := bindMember(ctx)
			if !ok {
				return
			}
			var body types.UpdateProjectMemberRoleRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			member, err := svc().Projects.UpdateMemberRole(ctx.Request.Context(), controllers.CurrentUser(ctx), params.ID, params.UserID, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": member})
		}).
		DELETE("/projects/:id/members/:userId", func(ctx *gin.Context) {
			params, ok := bindMember(ctx)
			if !ok {
				return
			}
			if err := svc().Projects.RemoveMember(ctx.Request.Context(), controllers.CurrentUser(ctx), params.ID, params.UserID); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/projects/:id/statuses", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			statuses, err := svc().Statuses.List(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": statuses, "count": len(statuses)})
		}).
		PUT("/projects/:id/statuses/order", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.ReorderTaskStatusesRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			statuses, err := svc().Statuses.Reorder(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": statuses, "count": len(statuses)})
		}).
		GET("/projects/:id/tasks", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			tasks, err := svc().Tasks.List(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
		})
	return g
}

func statusHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/statuses", func(ctx *gin.Context) {
			var body types.CreateTaskStatusRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			status, err := svc().Statuses.Create(ctx.Request.Context(), controllers.CurrentUser(ctx), &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": status})
		}).
		GET("/statuses/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			status, err := svc().Statuses.Get(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": status})
		}).
		PATCH("/statuses/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateTaskStatusRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			status, err := svc().Statuses.Update(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": status})
		}).
		DELETE("/statuses/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := svc().Statuses.Delete(ctx.Request.Context(), controllers.CurrentUser(ctx), id); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
