package controllers

import (
	"net/http"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the role-scoped summary read models.
type DashboardController struct {
	dashboards stores.DashboardStore
	users      stores.UserStore
}

func NewDashboardController(dashboards stores.DashboardStore, users stores.UserStore) *DashboardController {
	return &DashboardController{dashboards: dashboards, users: users}
}

// Citizen returns the caller's own issue counts and payment totals.
func (dc *DashboardController) Citizen(c *gin.Context) {
	actor, ok := resolveActor(c, dc.users)
	if !ok {
		return
	}
	if actor.Role == models.RoleUnknownActor {
		c.JSON(http.StatusForbidden, gin.H{"error": "No account found for this user"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	summary, err := dc.dashboards.CitizenSummary(ctx, actor.Email)
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Staff returns assigned-issue counts plus today's assignments (UTC day).
func (dc *DashboardController) Staff(c *gin.Context) {
	actor, ok := resolveActor(c, dc.users)
	if !ok {
		return
	}
	if !actor.IsActiveStaff() && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	summary, err := dc.dashboards.StaffSummary(ctx, actor.Email, time.Now())
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Admin returns the global counts and recent activity.
func (dc *DashboardController) Admin(c *gin.Context) {
	actor, ok := resolveActor(c, dc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	summary, err := dc.dashboards.AdminSummary(ctx)
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, summary)
}
