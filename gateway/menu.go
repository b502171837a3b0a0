package gateway

import (
	"net/http"

	"github.com/example/homecook/pkg/api"
	"github.com/gin-gonic/gin"
)

// landingMenu godoc
// @Summary  Featured kitchens preview
// @Tags     menu
// @Produce  json
// @Success  200 {array} api.LandingItem
// @Router   /landing [get]
func (g *Gateway) landingMenu(c *gin.Context) {
	items, err := g.api.LandingMenu(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (g *Gateway) menuItems(c *gin.Context) {
	items, err := g.api.MenuItems(c.Request.Context(), c.Param("cooker_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (g *Gateway) createMenuItem(c *gin.Context) {
	var req api.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := g.api.CreateMenuItem(c.Request.Context(), principal(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (g *Gateway) updateMenuItem(c *gin.Context) {
	var req api.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := g.api.UpdateMenuItem(c.Request.Context(), principal(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (g *Gateway) deleteMenuItem(c *gin.Context) {
	res, err := g.api.DeleteMenuItem(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// listReviews godoc
// @Summary  Reviews with customer and chef profiles
// @Tags     reviews
// @Produce  json
// @Success  200 {array} api.ReviewView
// @Router   /reviews [get]
func (g *Gateway) listReviews(c *gin.Context) {
	reviews, err := g.api.Reviews(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (g *Gateway) createReview(c *gin.Context) {
	var req api.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	review, err := g.api.CreateReview(c.Request.Context(), principal(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (g *Gateway) listNotifications(c *gin.Context) {
	if g.notifications == nil {
		c.JSON(http.StatusOK, gin.H{"notifications": []any{}})
		return
	}
	notes, err := g.notifications.Recent(20)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes})
}
