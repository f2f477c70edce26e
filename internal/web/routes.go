package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sstent/ridecoach/internal/analysis"
	"github.com/sstent/ridecoach/internal/database"
	"github.com/sstent/ridecoach/internal/geo"
	"github.com/sstent/ridecoach/internal/models"
	"github.com/sstent/ridecoach/internal/parser"
	"github.com/sstent/ridecoach/internal/sync"
)

// maxUploadSize caps request bodies carrying track files.
const maxUploadSize = 32 << 20

type WebHandler struct {
	syncer *sync.SyncService
}

func NewWebHandler(syncer *sync.SyncService) *WebHandler {
	return &WebHandler{syncer: syncer}
}

// NewRouter builds a gin engine with the default logger and recovery.
func NewRouter(h *WebHandler) *gin.Engine {
	router := gin.Default()
	h.RegisterRoutes(router)
	return router
}

func (h *WebHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	api.GET("/stats", h.Stats)
	api.POST("/sync", h.Sync)
	api.GET("/distance", h.Distance)

	gpx := api.Group("/gpx")
	gpx.POST("/upload", h.Upload)
	gpx.POST("/analyze", h.Analyze)
	gpx.GET("", h.List)
	gpx.GET("/:id", h.Get)
	gpx.DELETE("/:id", h.Delete)
}

func (h *WebHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Upload analyses a multipart "file" for form field "userId" and stores it.
func (h *WebHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	userID, err := strconv.ParseInt(c.PostForm("userId"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "file is required")
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unreadable file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unreadable file")
		return
	}

	report, err := h.syncer.ImportFile(header.Filename, userID, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// Analyze runs the analysis on the raw request body without storing it.
func (h *WebHandler) Analyze(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unreadable body")
		return
	}

	ids := models.Identifiers{Filename: c.Query("filename")}
	report, err := analysis.Analyze(data, ids, h.syncer.Thresholds())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *WebHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return
	}

	report, err := h.syncer.GetAnalysis(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *WebHandler) List(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}

	files, err := h.syncer.ListFiles(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

func (h *WebHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.syncer.DeleteFile(id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WebHandler) Stats(c *gin.Context) {
	stats, err := h.syncer.Stats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *WebHandler) Sync(c *gin.Context) {
	if err := h.syncer.Sync(context.WithoutCancel(c.Request.Context())); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// Distance returns the great-circle distance in meters between two points.
func (h *WebHandler) Distance(c *gin.Context) {
	var coords [4]float64
	for i, key := range []string{"lat1", "lon1", "lat2", "lon2"} {
		v, err := strconv.ParseFloat(c.Query(key), 64)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, key+" is required")
			return
		}
		coords[i] = v
	}

	if !validLatLon(coords[0], coords[1]) || !validLatLon(coords[2], coords[3]) {
		abortWithError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}

	a := models.NewWaypoint(coords[0], coords[1])
	b := models.NewWaypoint(coords[2], coords[3])
	c.JSON(http.StatusOK, gin.H{"distance_meters": geo.Distance(a, b)})
}

func validLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func respondError(c *gin.Context, err error) {
	switch {
	case parser.IsParseError(err), errors.Is(err, parser.ErrUnsupportedFormat):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
	}
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
