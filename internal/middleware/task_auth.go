package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	apierrors "github.com/yukikurage/gestor-tarefas/internal/errors"
)

// RequireTaskID parses the :id route parameter; malformed ids are rejected with 400
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID returns the id parsed by RequireTaskID
func GetTaskID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	taskID, ok := value.(uint64)
	return taskID, ok
}
