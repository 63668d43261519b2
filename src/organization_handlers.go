package main

import (
	"log"
	"net/http"
	"taskflow/src/controllers"
	"taskflow/src/rbac"
	"taskflow/src/types"

	"github.com/gin-gonic/gin"
)

func organizationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/organizations", func(ctx *gin.Context) {
			orgs, err := svc().Organizations.ListForUser(ctx.Request.Context(), controllers.CurrentUser(ctx))
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orgs, "count": len(orgs)})
		}).
		POST("/organizations", func(ctx *gin.Context) {
			var body types.CreateOrganizationRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			org, err := svc().Organizations.Create(ctx.Request.Context(), controllers.CurrentUser(ctx), &body)
			if err != nil {
				log.Printf("Error creating organization: %s\n", err.Error())
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": org})
		}).
		GET("/organizations/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			org, err := svc().Organizations.Get(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": org})
		}).
		PATCH("/organizations/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateOrganizationRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			org, err := svc().Organizations.Update(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": org})
		}).
		DELETE("/organizations/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := svc().Organizations.Delete(ctx.Request.Context(), controllers.CurrentUser(ctx), id); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/organizations/:id/permissions", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var query types.PermissionQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			decision, err := svc().Organizations.HasPermission(ctx.Request.Context(), controllers.CurrentUser(ctx), id, rbac.OrgAction(query.Action))
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": decision})
		}).
		GET("/organizations/:id/members", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			members, err := svc().Organizations.ListMembers(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": members, "count": len(members)})
		}).
		POST("/organizations/:id/members", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.AddOrganizationMemberRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			member, err := svc().Organizations.AddMember(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": member})
		}).
		PATCH("/organizations/:id/members/:userId", func(ctx *gin.Context) {
			params, ok := bindMember(ctx)
			if !ok {
				return
			}
			var body types.UpdateOrganizationMemberRoleRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			member, err := svc().Organizations.UpdateMemberRole(ctx.Request.Context(), controllers.CurrentUser(ctx), params.ID, params.UserID, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": member})
		}).
		DELETE("/organizations/:id/members/:userId", func(ctx *gin.Context) {
			params, ok := bindMember(ctx)
			if !ok {
				return
			}
			if err := svc().Organizations.RemoveMember(ctx.Request.Context(), controllers.CurrentUser(ctx), params.ID, params.UserID); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/organizations/:id/teams", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			teams, err := svc().Teams.List(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": teams, "count": len(teams)})
		}).
		GET("/organizations/:id/projects", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			projects, err := svc().Projects.List(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": projects, "count": len(projects)})
		})
	return g
}

func teamHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/teams", func(ctx *gin.Context) {
			var body types.CreateTeamRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			team, err := svc().Teams.Create(ctx.Request.Context(), controllers.CurrentUser(ctx), &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": team})
		}).
		GET("/teams/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			team, err := svc().Teams.Get(ctx.Request.Context(), controllers.CurrentUser(ctx), id)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": team})
		}).
		PATCH("/teams/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateTeamRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			team, err := svc().Teams.Update(ctx.Request.Context(), controllers.CurrentUser(ctx), id, &body)
			if err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": team})
		}).
		DELETE("/teams/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := svc().Teams.Delete(ctx.Request.Context(), controllers.CurrentUser(ctx), id); err != nil {
				abortWithServiceError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
