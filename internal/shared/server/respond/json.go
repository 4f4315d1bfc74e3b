package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for successful API calls.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// JSON writes payload wrapped in the success envelope.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, SuccessResponse{Success: true, Data: payload})
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}
