package main

import (
	"context"
	"net/http"
	"taskflow/src/controllers"
	"taskflow/src/models"
	"taskflow/src/services"
	"taskflow/src/types"

	"github.com/gin-gonic/gin"
)

type memberTaskList func(tasks *services.TaskService, ctx context.Context, userID string) ([]models.TaskItem, error)

// listMemberTasks serves a task listing scoped to the caller's projects.
func listMemberTasks(list memberTaskList) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tasks, err := list(svc().Tasks, ctx.Request.Context(), controllers.CurrentUser(ctx))
		if err != nil {
			abortWithServiceError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
	}
}

func taskHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tasks/assigned", listMemberTasks((*services.TaskService).ListAssigned)).
		GET("/tasks/created", listMemberTasks((*services.TaskService).ListCreated)).
		GET("/tasks/overdue", listMemberTasks((*services.TaskService).ListOverdue)).
		GET("/tasks/due-today", listMemberTasks((*services.TaskService).ListDueToday)).
		GET("/tasks/upcoming", func(ctx *gin.Context) {
			var query types.UpcomingTasksQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tasks, err := svc().Tasks.ListUpcoming(ctx.Request.Context(), controllers.CurrentUser(ctx), query.Days)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
		}).
		GET("/tasks/search", func(ctx *gin.Context) {
			var query types.SearchTasksQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tasks, err := svc().Tasks.Search(ctx.Request.Context(), controllers.CurrentUser(ctx), query.Term, query.ProjectID)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
		}).
		POST("/tasks", func(ctx *gin.Context) {
			var body types.CreateTaskRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			task, err := svc().Tasks.Create(ctx.Request.Context(), controllers.CurrentUser(ctx), &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": task})
		}).
		GET("/tasks/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			task, err := svc().Tasks.Get(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": task})
		}).
		GET("/tasks/:id/details", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			details, err := svc().Tasks.Details(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": details})
		}).
		PATCH("/tasks/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateTaskRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			task, err := svc().Tasks.Update(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": task})
		}).
		DELETE("/tasks/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := svc().Tasks.Delete(ctx.Request.Context(), controllers.CurrentUser(ctx), id); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/tasks/:id/status", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.MoveTaskRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			task, err := svc().Tasks.Move(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": task})
		}).
		PUT("/tasks/:id/progress", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateTaskProgressRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			task, err := svc().Tasks.UpdateProgress(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": task})
		}).
		PUT("/tasks/:id/assignee", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.AssignTaskRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			task, err := svc().Tasks.Assign(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": task})
		}).
		GET("/tasks/:id/comments", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			comments, err := svc().Tasks.ListComments(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": comments, "count": len(comments)})
		}).
		POST("/tasks/:id/comments", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.CreateCommentRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			comment, err := svc().Tasks.AddComment(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": comment})
		}).
		GET("/tasks/:id/time-entries", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			entries, err := svc().Tasks.ListTimeEntries(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
		}).
		POST("/tasks/:id/time-entries", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.LogTimeRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			entry, err := svc().Tasks.LogTime(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": entry})
		})
	return g
}
