package handlers

import (
	"errors"
	"net/http"
	"time"

	"lexcite-backend/models"
	"lexcite-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for browsing the legal corpus
type DocumentHandler struct {
	jurisdictionRepo *repository.JurisdictionRepository
	documentRepo     *repository.DocumentRepository
	sectionRepo      *repository.SectionRepository
	provenanceRepo   *repository.ProvenanceRepository
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	jurisdictionRepo *repository.JurisdictionRepository,
	documentRepo *repository.DocumentRepository,
	sectionRepo *repository.SectionRepository,
	provenanceRepo *repository.ProvenanceRepository,
) *DocumentHandler {
	return &DocumentHandler{
		jurisdictionRepo: jurisdictionRepo,
		documentRepo:     documentRepo,
		sectionRepo:      sectionRepo,
		provenanceRepo:   provenanceRepo,
	}
}

// ListJurisdictions handles GET /api/jurisdictions
// Jurisdictions are returned in hierarchy order: federal first, then state,
// territory, local.
func (h *DocumentHandler) ListJurisdictions(c *gin.Context) {
	jurisdictions, err := h.jurisdictionRepo.List(c.Request.Context())
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
		"data":    jurisdictions,
	})
}

// ListDocuments handles GET /api/jurisdictions/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid jurisdiction ID format",
			},
		})
		return
	}

	documents, err := h.documentRepo.ListByJurisdiction(c.Request.Context(), id)
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
		"data":    documents,
	})
}

// GetDocument handles GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	document, err := h.documentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    document,
	})
}

// ListSections handles GET /api/documents/:id/sections
func (h *DocumentHandler) ListSections(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	sections, err := h.sectionRepo.ListByDocument(c.Request.Context(), id)
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
		"data":    sections,
	})
}

// GetSection handles GET /api/sections/:id
func (h *DocumentHandler) GetSection(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid section ID format",
			},
		})
		return
	}

	section, err := h.sectionRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Section not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    section,
	})
}

// VerifyDocumentRequest represents the request body for recording a verification
type VerifyDocumentRequest struct {
	VerifiedBy string  `json:"verified_by" binding:"required"`
	Method     string  `json:"method" binding:"required"`
	Notes      *string `json:"notes"`
}

// VerifyDocument handles POST /api/documents/:id/verify. The entry is appended
// to the document's verification chain and the document is marked verified.
func (h *DocumentHandler) VerifyDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	var req VerifyDocumentRequest
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

	entry := models.VerificationEntry{
		VerifiedBy: req.VerifiedBy,
		VerifiedAt: time.Now(),
		Method:     req.Method,
		Notes:      req.Notes,
	}

	if err := h.provenanceRepo.AppendVerification(c.Request.Context(), id, entry); err != nil {
		if errors.Is(err, models.ErrCorruptProvenance) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CORRUPT_PROVENANCE",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VERIFY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.documentRepo.UpdateVerificationStatus(c.Request.Context(), id, models.VerificationVerified); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VERIFY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"document_id": id,
			"verified_by": entry.VerifiedBy,
			"verified_at": entry.VerifiedAt,
		},
	})
}

// GetProvenance handles GET /api/documents/:id/provenance
func (h *DocumentHandler) GetProvenance(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	panel, err := h.provenanceRepo.GetByDocumentID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No provenance recorded for document",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    panel,
	})
}
