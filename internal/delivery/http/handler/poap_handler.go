package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/usecase/poap"
)

type PoapHandler struct {
	poapService *poap.Service
}

func NewPoapHandler(poapService *poap.Service) *PoapHandler {
	return &PoapHandler{poapService: poapService}
}

// PoapListResponse wraps a list of attendance tokens
type PoapListResponse struct {
	Poaps []domain.PoapRecord `json:"poaps"`
	Count int                 `json:"count"`
}

func newPoapList(records []domain.PoapRecord) PoapListResponse {
	if records == nil {
		records = []domain.PoapRecord{}
	}
	return PoapListResponse{Poaps: records, Count: len(records)}
}

// Mine handles GET /poaps/me
// @Summary My POAPs
// @Description Empty when no wallet is linked or the POAP service is down
// @Tags poaps
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PoapListResponse
// @Router /poaps/me [get]
func (h *PoapHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, err := h.poapService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPoapList(records))
}

// Sync handles POST /poaps/sync
// @Summary Refresh my POAPs from the POAP service
// @Tags poaps
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PoapListResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /poaps/sync [post]
func (h *PoapHandler) Sync(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, err := h.poapService.SyncWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPoapList(records))
}

// Shared handles GET /poaps/shared/:user_id
// @Summary POAPs I share with another user
// @Tags poaps
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} PoapListResponse
// @Router /poaps/shared/{user_id} [get]
func (h *PoapHandler) Shared(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, err := h.poapService.GetShared(c.Request.Context(), userID, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPoapList(records))
}
