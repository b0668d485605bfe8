package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letsconnect/connect-backend/internal/usecase/feed"
	"github.com/letsconnect/connect-backend/internal/usecase/match"
	"github.com/letsconnect/connect-backend/internal/usecase/swipe"
)

type DiscoveryHandler struct {
	feedUseCase  *feed.FeedUseCase
	swipeUseCase *swipe.SwipeUseCase
	matchUseCase *match.MatchUseCase
}

func NewDiscoveryHandler(
	feedUseCase *feed.FeedUseCase,
	swipeUseCase *swipe.SwipeUseCase,
	matchUseCase *match.MatchUseCase,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		feedUseCase:  feedUseCase,
		swipeUseCase: swipeUseCase,
		matchUseCase: matchUseCase,
	}
}

// Discover handles GET /discover
// @Summary Discovery feed
// @Description Ranked candidates; is_synthetic marks the sample fallback
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param city query string false "Exact city"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size, at most 50"
// @Success 200 {object} feed.FeedResult
// @Failure 400 {object} ErrorResponse
// @Router /discover [get]
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter feed.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.feedUseCase.GetCandidates(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Swipe handles POST /swipe
// @Summary Record a swipe
// @Description is_match is true only for the swipe that created the match
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body swipe.SwipeRequest true "Swipe"
// @Success 200 {object} swipe.SwipeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /swipe [post]
func (h *DiscoveryHandler) Swipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req swipe.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.swipeUseCase.RecordSwipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMatches handles GET /matches
// @Summary List my matches
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.MatchWithProfile
// @Router /matches [get]
func (h *DiscoveryHandler) ListMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	matches, err := h.matchUseCase.ListMatches(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// Icebreakers handles GET /matches/:match_id/icebreakers
// @Summary Conversation openers for a match
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param match_id path string true "Match ID"
// @Success 200 {object} match.IcebreakerResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{match_id}/icebreakers [get]
func (h *DiscoveryHandler) Icebreakers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.matchUseCase.Icebreakers(c.Request.Context(), userID, c.Param("match_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
