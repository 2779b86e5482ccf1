package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"lexcite-backend/models"
	"lexcite-backend/service"
	"lexcite-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportHandler handles HTTP requests for citation exports
type ExportHandler struct {
	exportService *service.ExportService
	storage       storage.Storage
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService, storage storage.Storage) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		storage:       storage,
	}
}

// ExportItemRequest is one citation request in an export request body
type ExportItemRequest struct {
	SectionID      string `json:"section_id" binding:"required"`
	DocumentID     string `json:"document_id" binding:"required"`
	JurisdictionID string `json:"jurisdiction_id" binding:"required"`
}

// ExportOptionsRequest mirrors the user-facing export options
type ExportOptionsRequest struct {
	CitationStyle   string `json:"citation_style"`
	Format          string `json:"format"`
	IncludeFullText bool   `json:"include_full_text"`
	IncludeMetadata bool   `json:"include_metadata"`
}

func (r ExportOptionsRequest) toOptions() models.ExportOptions {
	options := models.DefaultExportOptions()
	if r.CitationStyle != "" {
		options.CitationStyle = models.CitationStyle(r.CitationStyle)
	}
	if r.Format != "" {
		options.Format = models.ExportFormat(r.Format)
	}
	options.IncludeFullText = r.IncludeFullText
	options.IncludeMetadata = r.IncludeMetadata
	return options
}

func parseExportItems(items []ExportItemRequest) ([]models.ExportItem, error) {
	parsed := make([]models.ExportItem, 0, len(items))
	for i, item := range items {
		sectionID, err := uuid.Parse(item.SectionID)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid section_id", i)
		}
		documentID, err := uuid.Parse(item.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid document_id", i)
		}
		jurisdictionID, err := uuid.Parse(item.JurisdictionID)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid jurisdiction_id", i)
		}
		parsed = append(parsed, models.ExportItem{
			SectionID:      sectionID,
			DocumentID:     documentID,
			JurisdictionID: jurisdictionID,
		})
	}
	return parsed, nil
}

// CreateExportRequest represents the request body for starting a batch export
type CreateExportRequest struct {
	UserID  string               `json:"user_id" binding:"required"`
	Items   []ExportItemRequest  `json:"items" binding:"required"`
	Options ExportOptionsRequest `json:"options"`
}

// CreateExport handles POST /api/exports
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req CreateExportRequest
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

	items, err := parseExportItems(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ITEMS",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.exportService.CreateExport(c.Request.Context(), service.CreateExportRequest{
		UserID:  userID,
		Items:   items,
		Options: req.Options.toOptions(),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyExport) || errors.Is(err, service.ErrInvalidExportOptions) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_EXPORT",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing
	// Use background context (not request context) to avoid cancellation
	go func() {
		bgCtx := context.Background()
		if err := h.exportService.ProcessExport(bgCtx, result.JobID); err != nil {
			// Error is logged and stored in job.ErrorMessage
			// No need to return to HTTP client (they'll poll status)
			log.Printf("Export job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Export job created. Poll /api/exports/:id for updates.",
		},
	})
}

// ListExports handles GET /api/exports?user_id=...
func (h *ExportHandler) ListExports(c *gin.Context) {
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

	result, err := h.exportService.ListExports(c.Request.Context(), service.ListExportsRequest{
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
		"data":    result.Jobs,
	})
}

// GetExportStatus handles GET /api/exports/:id
func (h *ExportHandler) GetExportStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.exportService.GetExportStatus(c.Request.Context(), service.GetExportStatusRequest{
		JobID: id,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Export job not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"job":      result.Job,
			"progress": result.Job.Progress(),
		},
	})
}

// DownloadExport handles GET /api/exports/:id/download
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.exportService.GetArtifact(c.Request.Context(), service.GetArtifactRequest{
		JobID: id,
	})
	if err != nil {
		status := http.StatusNotFound
		code := "NOT_FOUND"
		if errors.Is(err, service.ErrArtifactNotReady) {
			status = http.StatusConflict
			code = "NOT_READY"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	artifact := result.Artifact
	reader, err := h.storage.Download(c.Request.Context(), artifact.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer reader.Close()

	c.DataFromReader(
		http.StatusOK,
		artifact.Size,
		artifact.MimeType,
		reader,
		map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", artifact.Filename),
		},
	)
}

// QuickExportRequest represents the request body for a single-item export
type QuickExportRequest struct {
	UserID  string               `json:"user_id" binding:"required"`
	Item    ExportItemRequest    `json:"item" binding:"required"`
	Options ExportOptionsRequest `json:"options"`
}

// QuickExport handles POST /api/exports/quick. The encoded file is returned
// inline; nothing is persisted.
func (h *ExportHandler) QuickExport(c *gin.Context) {
	var req QuickExportRequest
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

	items, err := parseExportItems([]ExportItemRequest{req.Item})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ITEMS",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.exportService.QuickExport(c.Request.Context(), service.QuickExportRequest{
		UserID:  userID,
		Item:    items[0],
		Options: req.Options.toOptions(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingReference):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Section, document, or jurisdiction not found",
				},
			})
		case errors.Is(err, service.ErrInvalidExportOptions):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_EXPORT",
					"message": err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EXPORT_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.Filename))
	c.Data(http.StatusOK, result.File.MimeType, result.File.Content)
}
