package http

import (
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps a fully materialized listing.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response for requests that
// could not be decoded at all.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

// respondInternalError logs the error and sends a 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Msg("internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Success Response Helpers ---

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondList drains seq into a ListResponse. The first error aborts the
// listing and is reported through respondAppError.
func respondList[T any](c *gin.Context, seq iter.Seq2[T, error]) {
	items := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			respondAppError(c, err)
			return
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, ListResponse[T]{Items: items, Count: len(items)})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into req, responding with a 400 on
// malformed input.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryInt reads a bounded integer query parameter. An absent parameter
// yields def; a malformed or out-of-range one is answered with a 400.
func queryInt(c *gin.Context, name string, def, minVal, maxVal int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal || v > maxVal {
		respondBadRequest(c, fmt.Sprintf("%s must be an integer between %d and %d", name, minVal, maxVal))
		return 0, false
	}
	return v, true
}
