package controllers

import (
	"log"
	"net/http"
	"time"

	"cityfix-be/models"
	"cityfix-be/stores"

	"github.com/gin-gonic/gin"
)

// UserController covers profile edits and the admin user/staff surface.
type UserController struct {
	users stores.UserStore
}

func NewUserController(users stores.UserStore) *UserController {
	return &UserController{users: users}
}

// UpdateProfile edits the caller's display name and photo.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	var input struct {
		Name  string `json:"name,omitempty" binding:"omitempty,max=50"`
		Photo string `json:"photo,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.UpdateProfile(ctx, email, input.Name, input.Photo); err != nil {
		respondStoreError(c, err, "", "User not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// ListUsers returns all citizen accounts. Admin only.
func (uc *UserController) ListUsers(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, users)
}

// SetUserStatus blocks or unblocks a citizen account. Admin only.
func (uc *UserController) SetUserStatus(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required,oneof=active blocked"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.SetUserStatus(ctx, c.Param("email"), input.Status); err != nil {
		respondStoreError(c, err, "", "User not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User status updated"})
}

// SetUserRole promotes a citizen account to admin or demotes it back.
// Admin only.
func (uc *UserController) SetUserRole(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Role string `json:"role" binding:"required,oneof=user admin"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.SetUserRole(ctx, c.Param("email"), input.Role); err != nil {
		respondStoreError(c, err, "", "User not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User role updated"})
}

// CreateStaff provisions a staff or admin account with its login
// credential. Admin only.
func (uc *UserController) CreateStaff(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required,oneof=staff admin"`
		Photo    string `json:"photo,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member := models.Staff{
		Name:      input.Name,
		Email:     input.Email,
		Photo:     input.Photo,
		Password:  input.Password,
		Role:      input.Role,
		Status:    models.AccountActive,
		CreatedAt: time.Now(),
	}

	if err := member.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.CreateStaff(ctx, &member); err != nil {
		respondStoreError(c, err, "", "", "Staff member with this email already exists")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":  member.Name,
		"email": member.Email,
		"role":  member.Role,
	})
}

// ListStaff returns all staff accounts. Admin only.
func (uc *UserController) ListStaff(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	members, err := uc.users.ListStaff(ctx)
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, members)
}

// UpdateStaff edits a staff member's role or status. Admin only.
func (uc *UserController) UpdateStaff(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Role   *string `json:"role,omitempty" binding:"omitempty,oneof=staff admin"`
		Status *string `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
		Name   *string `json:"name,omitempty" binding:"omitempty,max=50"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if input.Role != nil {
		fields["role"] = *input.Role
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.UpdateStaff(ctx, c.Param("email"), fields); err != nil {
		respondStoreError(c, err, "", "Staff member not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member updated"})
}

// DeleteStaff removes a staff account. Admin only.
func (uc *UserController) DeleteStaff(c *gin.Context) {
	actor, ok := resolveActor(c, uc.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := uc.users.DeleteStaff(ctx, c.Param("email")); err != nil {
		respondStoreError(c, err, "", "Staff member not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted"})
}
