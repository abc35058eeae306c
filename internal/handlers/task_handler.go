package handlers

import (
	"trackit-api/internal/apperror"
	"trackit-api/internal/database"
	"trackit-api/internal/models"
	"trackit-api/internal/realtime"
	"trackit-api/internal/response"
	"trackit-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateTaskRequest represents the request payload for creating a task.
// category/subCategory are accepted as aliases of categoryId/subCategoryId.
type CreateTaskRequest struct {
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	Vendor        string           `json:"vendor" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Approver      models.Approver  `json:"approver" binding:"required"`
	CategoryID    string           `json:"categoryId"`
	Category      string           `json:"category"`
	SubCategoryID string           `json:"subCategoryId"`
	SubCategory   string           `json:"subCategory"`
}

// UpdateTaskRequest holds the only fields a handler may change
type UpdateTaskRequest struct {
	IsApproved  *bool   `json:"isApproved"`
	IsPaid      *bool   `json:"isPaid"`
	Progress    *int    `json:"progress"`
	IsCompleted *bool   `json:"isCompleted"`
	Remark      *string `json:"remark"`
}

func taskService() *services.TaskService {
	return services.NewTaskService(database.GetDB())
}

func notifyTask(eventType string, task *models.Task, actor *models.User) {
	realtime.GetHub().Notify(task.HandlerID, realtime.Event{
		Type:     eventType,
		EntityID: task.ID,
		ActorID:  actor.ID,
	})
}

// CreateTask handles POST /api/tasks/create
// The authenticated user becomes the task handler.
func CreateTask(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	categoryID := firstNonEmpty(req.CategoryID, req.Category)
	subCategoryID := firstNonEmpty(req.SubCategoryID, req.SubCategory)
	if categoryID == "" || subCategoryID == "" {
		response.Error(c, apperror.Validation("category and subCategory are required"))
		return
	}

	task, err := taskService().Create(c.Request.Context(), services.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Vendor:        req.Vendor,
		Amount:        *req.Amount,
		Approver:      req.Approver,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyTask(realtime.TaskCreated, task, user)
	response.Created(c, entityMessage("Task", "created"), gin.H{"task": task})
}

// GetTasks handles GET /api/tasks
// Optional query params: category, subCategory, title, isApproved, isPaid,
// isCompleted, startDate, endDate (bounds on updatedAt).
func GetTasks(c *gin.Context) {
	filter := services.TaskFilter{
		Category:    c.Query("category"),
		SubCategory: c.Query("subCategory"),
		Title:       c.Query("title"),
	}
	var err error
	if filter.IsApproved, err = queryBool(c, "isApproved"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.IsPaid, err = queryBool(c, "isPaid"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.IsCompleted, err = queryBool(c, "isCompleted"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.StartDate, filter.EndDate, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}

	tasks, err := taskService().List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Tasks", "fetched"), gin.H{"tasks": tasks})
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	task, err := taskService().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entityMessage("Task", "fetched"), gin.H{"task": task})
}

// UpdateTask handles PATCH /api/tasks/:id
func UpdateTask(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	task, err := taskService().Update(c.Request.Context(), c.Param("id"), services.UpdateTaskInput{
		IsApproved:  req.IsApproved,
		IsPaid:      req.IsPaid,
		Progress:    req.Progress,
		IsCompleted: req.IsCompleted,
		Remark:      req.Remark,
	}, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyTask(realtime.TaskUpdated, task, user)
	response.OK(c, entityMessage("Task", "updated"), gin.H{"task": task})
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	task, err := taskService().Delete(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyTask(realtime.TaskDeleted, task, user)
	response.OK(c, entityMessage("Task", "deleted"), nil)
}
