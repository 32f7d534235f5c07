package controllers

import (
	"net/http"
	"strconv"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"

	"github.com/gin-gonic/gin"
)

// FreeIssueQuota is how many open reports a non-premium citizen may have on
// file before creation is refused.
const FreeIssueQuota = 3

// IssueController owns the issue lifecycle HTTP surface.
type IssueController struct {
	issues stores.IssueStore
	users  stores.UserStore
}

func NewIssueController(issues stores.IssueStore, users stores.UserStore) *IssueController {
	return &IssueController{issues: issues, users: users}
}

// Create files a new issue for the authenticated citizen.
func (ic *IssueController) Create(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if actor.Role == models.RoleUnknownActor {
		c.JSON(http.StatusForbidden, gin.H{"error": "No account found for this user"})
		return
	}
	if !actor.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
		return
	}

	var input struct {
		Title       string `json:"title" binding:"required,max=200"`
		Description string `json:"description" binding:"required,max=1000"`
		Category    string `json:"category" binding:"required"`
		Location    string `json:"location" binding:"required,max=200"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if actor.Role == models.RoleCitizenActor && !actor.Premium {
		count, err := ic.issues.CountByReporter(ctx, actor.Email)
		if err != nil {
			respondStoreError(c, err, "Invalid issue ID", "", "")
			return
		}
		if count >= FreeIssueQuota {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Free issue limit reached. Upgrade to premium to report more issues.",
			})
			return
		}
	}

	now := time.Now()
	issue := models.Issue{
		TrackingID:    models.NewTrackingCode(),
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Location:      input.Location,
		ReporterEmail: actor.Email,
		ReporterName:  actor.Name,
		Status:        models.StatusPending,
		Priority:      models.PriorityNormal,
		PaymentStatus: models.PaymentUnpaid,
		UpvotedBy:     []string{},
		Timeline: []models.TimelineEntry{{
			Action:    models.ActionIssueReported,
			Message:   "Issue reported",
			By:        actor.TimelineLabel(),
			Status:    models.StatusPending,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := ic.issues.Insert(ctx, &issue)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "", "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         id.Hex(),
		"trackingId": issue.TrackingID,
	})
}

func pageFromQuery(c *gin.Context) stores.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return stores.Page{Page: page, Limit: limit}.Clamp()
}

// ListPublic is the unauthenticated paginated listing, sorted by priority
// so boosted issues surface first.
func (ic *IssueController) ListPublic(c *gin.Context) {
	filters := stores.IssueFilters{
		Search:        c.Query("search"),
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		Category:      c.Query("category"),
		ReporterEmail: c.Query("email"),
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ic.issues.List(ctx, filters, pageFromQuery(c), true)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "", "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMine lists the caller's own issues.
func (ic *IssueController) ListMine(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	filters := stores.IssueFilters{
		ReporterEmail: email,
		Status:        c.Query("status"),
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ic.issues.List(ctx, filters, pageFromQuery(c), false)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "", "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAssigned lists issues assigned to the calling staff member.
func (ic *IssueController) ListAssigned(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if !actor.IsActiveStaff() && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
		return
	}

	filters := stores.IssueFilters{
		AssignedEmail: actor.Email,
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ic.issues.List(ctx, filters, pageFromQuery(c), false)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "", "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns a single issue by id.
func (ic *IssueController) Get(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ic.issues.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
		return
	}

	c.JSON(http.StatusOK, issue)
}

// Update applies either a status transition (with timeline entry and
// updatedAt stamp) or a generic field edit (neither). Staff and admins only.
func (ic *IssueController) Update(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if !actor.IsActiveStaff() && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
		return
	}

	var input struct {
		Status      *string `json:"status,omitempty"`
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Location    *string `json:"location,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if input.Status != nil {
		status := models.IssueStatus(*input.Status)
		entry := models.TimelineEntry{
			Action:    models.ActionStatusChanged,
			Message:   models.StatusMessage(status),
			By:        "Staff",
			Status:    status,
			Timestamp: time.Now(),
		}

		if err := ic.issues.UpdateStatus(ctx, c.Param("id"), status, entry); err != nil {
			respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Issue status updated"})
		return
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := ic.issues.UpdateFields(ctx, c.Param("id"), fields); err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated"})
}

// Assign sets the issue's staff member. Admin only; at most once per issue.
func (ic *IssueController) Assign(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	member, err := ic.users.GetStaffByEmail(ctx, input.Email)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Staff member not found", "")
		return
	}

	ref := models.StaffRef{Email: member.Email, Name: member.Name}
	entry := models.TimelineEntry{
		Action:    models.ActionStaffAssigned,
		Message:   "Assigned to " + member.Name,
		By:        "Admin",
		Timestamp: time.Now(),
	}

	if err := ic.issues.AssignStaff(ctx, c.Param("id"), ref, entry); err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "Issue already has an assigned staff member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff assigned", "assignedTo": ref})
}

// Reject moves a pending issue to rejected and clears any assignment.
// Admin only; conflicts when the issue is past pending.
func (ic *IssueController) Reject(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	entry := models.TimelineEntry{
		Action:    models.ActionIssueRejected,
		Message:   "Issue rejected",
		By:        "Admin",
		Status:    models.StatusRejected,
		Timestamp: time.Now(),
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ic.issues.Reject(ctx, c.Param("id"), entry); err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "Only pending issues can be rejected")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue rejected"})
}

// Upvote records the caller's upvote, at most once per email and never for
// the reporter's own issue. Returns the count read back from storage.
func (ic *IssueController) Upvote(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if actor.Role == models.RoleUnknownActor {
		c.JSON(http.StatusForbidden, gin.H{"error": "No account found for this user"})
		return
	}
	if !actor.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ic.issues.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
		return
	}
	if issue.ReporterEmail == actor.Email {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot upvote your own issue"})
		return
	}

	count, err := ic.issues.AddUpvote(ctx, c.Param("id"), actor.Email)
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "You have already upvoted this issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upvote recorded", "upvotes": count})
}

// Delete hard-deletes an issue. Admin only.
func (ic *IssueController) Delete(c *gin.Context) {
	actor, ok := resolveActor(c, ic.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ic.issues.Delete(ctx, c.Param("id")); err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}
