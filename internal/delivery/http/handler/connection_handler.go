package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letsconnect/connect-backend/internal/usecase/connection"
)

type ConnectionHandler struct {
	connectionUseCase *connection.ConnectionUseCase
}

func NewConnectionHandler(connectionUseCase *connection.ConnectionUseCase) *ConnectionHandler {
	return &ConnectionHandler{connectionUseCase: connectionUseCase}
}

// List handles GET /connections
// @Summary My address book
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Connection
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	conns, err := h.connectionUseCase.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// Add handles POST /connections
// @Summary Save a contact
// @Tags connections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body connection.AddConnectionRequest true "Contact"
// @Success 201 {object} domain.Connection
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections [post]
func (h *ConnectionHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.AddConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	conn, err := h.connectionUseCase.Add(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// UpdateNotes handles PATCH /connections/:user_id
// @Summary Edit contact notes
// @Tags connections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path string true "Connected user ID"
// @Param request body connection.UpdateNotesRequest true "Notes"
// @Success 200 {object} domain.Connection
// @Failure 404 {object} ErrorResponse
// @Router /connections/{user_id} [patch]
func (h *ConnectionHandler) UpdateNotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	conn, err := h.connectionUseCase.UpdateNotes(c.Request.Context(), userID, c.Param("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// Remove handles DELETE /connections/:user_id
// @Summary Delete a contact
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "Connected user ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{user_id} [delete]
func (h *ConnectionHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.connectionUseCase.Remove(c.Request.Context(), userID, c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "connection removed"})
}
