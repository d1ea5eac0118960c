package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"monstager/internal/tasks"
	"monstager/internal/ws"
	"monstager/pkg/logger"
)

type TaskHandler struct {
	Tasks *tasks.Service
	// Hub is optional; when nil no events are published.
	Hub *ws.Hub
}

func NewTaskHandler(service *tasks.Service, hub *ws.Hub) *TaskHandler {
	return &TaskHandler{Tasks: service, Hub: hub}
}

func (h *TaskHandler) publish(ownerID string, event ws.Event) {
	if h.Hub != nil {
		h.Hub.Publish(ownerID, event)
	}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	list, err := h.Tasks.List(c.Context(), accountID(c))
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    list,
	})
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	task, err := h.Tasks.Get(c.Context(), accountID(c), c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    task,
	})
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	type TaskRequest struct {
		Task     string `json:"task"`
		Priority string `json:"priority"`
		Status   string `json:"status"`
		DueDate  string `json:"dueDate"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	owner := accountID(c)
	task, err := h.Tasks.Create(c.Context(), owner, tasks.CreateInput{
		Text:     req.Task,
		Priority: req.Priority,
		Status:   req.Status,
		DueDate:  req.DueDate,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.publish(owner, ws.Event{Event: ws.EventTaskCreated, Task: task})
	logger.AuditLogger.Info("Task created successfully", zap.String("task_id", task.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data":    task,
	})
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	type UpdateTaskRequest struct {
		Task      *string `json:"task"`
		Priority  *string `json:"priority"`
		Status    *string `json:"status"`
		Completed *bool   `json:"completed"`
		DueDate   *string `json:"dueDate"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	owner := accountID(c)
	task, err := h.Tasks.Update(c.Context(), owner, c.Params("id"), tasks.Patch{
		Text:      req.Task,
		Priority:  req.Priority,
		Status:    req.Status,
		Completed: req.Completed,
		DueDate:   req.DueDate,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.publish(owner, ws.Event{Event: ws.EventTaskUpdated, Task: task})
	logger.AuditLogger.Info("Task updated", zap.String("task_id", task.ID))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    task,
	})
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	owner := accountID(c)
	taskID := c.Params("id")
	if err := h.Tasks.Delete(c.Context(), owner, taskID); err != nil {
		return serviceError(c, err)
	}

	h.publish(owner, ws.Event{Event: ws.EventTaskDeleted, TaskID: taskID})
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  fiber.StatusOK,
	})
}
