package handlers

import (
	"errors"
	"net/http"

	"lexcite-backend/models"
	"lexcite-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CitationHandler handles HTTP requests for the citation library and the
// clipboard formatting path
type CitationHandler struct {
	citationService *service.CitationService
}

// NewCitationHandler creates a new citation handler
func NewCitationHandler(citationService *service.CitationService) *CitationHandler {
	return &CitationHandler{
		citationService: citationService,
	}
}

// SaveCitationRequest represents the request body for saving a citation
type SaveCitationRequest struct {
	UserID    string   `json:"user_id" binding:"required"`
	SectionID string   `json:"section_id" binding:"required"`
	Notes     *string  `json:"notes"`
	Tags      []string `json:"tags"`
}

// SaveCitation handles POST /api/citations
func (h *CitationHandler) SaveCitation(c *gin.Context) {
	var req SaveCitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	sectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SECTION_ID",
				"message": "Invalid section_id format",
			},
		})
		return
	}

	result, err := h.citationService.SaveCitation(c.Request.Context(), service.SaveCitationRequest{
		UserID:    userID,
		SectionID: sectionID,
		Notes:     req.Notes,
		Tags:      req.Tags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SAVE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Citation,
	})
}

// ListCitations handles GET /api/citations?user_id=...
func (h *CitationHandler) ListCitations(c *gin.Context) {
	userIDStr := c.Query("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Valid user_id query parameter is required",
			},
		})
		return
	}

	result, err := h.citationService.ListCitations(c.Request.Context(), service.ListCitationsRequest{
		UserID: userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Citations,
	})
}

// UpdateCitationRequest represents the request body for updating a saved citation
type UpdateCitationRequest struct {
	Notes       *string  `json:"notes"`
	Tags        []string `json:"tags"`
	Collections []string `json:"collections"`
}

// UpdateCitation handles PUT /api/citations/:id
func (h *CitationHandler) UpdateCitation(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid citation ID format",
			},
		})
		return
	}

	var req UpdateCitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.citationService.UpdateCitation(c.Request.Context(), service.UpdateCitationRequest{
		ID:          id,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Collections: req.Collections,
	})
	if err != nil {
		if errors.Is(err, service.ErrCitationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Saved citation not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Citation,
	})
}

// DeleteCitation handles DELETE /api/citations/:id
func (h *CitationHandler) DeleteCitation(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid citation ID format",
			},
		})
		return
	}

	if err := h.citationService.DeleteCitation(c.Request.Context(), service.DeleteCitationRequest{ID: id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// RecordAccess handles POST /api/citations/:id/access
func (h *CitationHandler) RecordAccess(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid citation ID format",
			},
		})
		return
	}

	result, err := h.citationService.RecordAccess(c.Request.Context(), service.RecordAccessRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Saved citation not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"access_count": result.AccessCount,
		},
	})
}

// FormatCitationRequest represents the request body for formatting a citation
type FormatCitationRequest struct {
	SectionID      string `json:"section_id" binding:"required"`
	DocumentID     string `json:"document_id" binding:"required"`
	JurisdictionID string `json:"jurisdiction_id" binding:"required"`
	Style          string `json:"style"`
}

// FormatCitation handles POST /api/citations/format
func (h *CitationHandler) FormatCitation(c *gin.Context) {
	var req FormatCitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	sectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SECTION_ID",
				"message": "Invalid section_id format",
			},
		})
		return
	}
	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document_id format",
			},
		})
		return
	}
	jurisdictionID, err := uuid.Parse(req.JurisdictionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_JURISDICTION_ID",
				"message": "Invalid jurisdiction_id format",
			},
		})
		return
	}

	style := models.CitationStyle(req.Style)
	if req.Style == "" {
		style = models.StylePlain
	}
	if !style.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STYLE",
				"message": "Unknown citation style",
			},
		})
		return
	}

	result, err := h.citationService.Format(c.Request.Context(), service.FormatRequest{
		SectionID:      sectionID,
		DocumentID:     documentID,
		JurisdictionID: jurisdictionID,
		Style:          style,
	})
	if err != nil {
		if errors.Is(err, service.ErrSectionNotFound) || errors.Is(err, service.ErrMissingReference) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORMAT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"citation": result.Citation,
			"style":    result.Style,
		},
	})
}
