package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/homecook/pkg/api"
	"github.com/example/homecook/pkg/models"
	"github.com/gin-gonic/gin"
)

type roleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

type reportStatusRequest struct {
	Status models.ReportStatus `json:"status" binding:"required"`
}

func (g *Gateway) listUsers(c *gin.Context) {
	users, err := g.api.Users(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

func (g *Gateway) updateUserRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := g.api.UpdateUserRole(c.Request.Context(), principal(c), c.Param("id"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (g *Gateway) deleteUser(c *gin.Context) {
	res, err := g.api.DeleteUser(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (g *Gateway) createReport(c *gin.Context) {
	var req api.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := g.api.CreateReport(c.Request.Context(), principal(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (g *Gateway) listReports(c *gin.Context) {
	reports, err := g.api.Reports(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "total": len(reports)})
}

func (g *Gateway) updateReportStatus(c *gin.Context) {
	var req reportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := g.api.UpdateReportStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (g *Gateway) auditTrail(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	logs, err := g.api.AuditTrail(c.Request.Context(), principal(c), c.Param("entity_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
