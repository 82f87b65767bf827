package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/provider"
	"github.com/fleveque/lastmosaic/internal/service"
)

// defaultFetchLimit is the fetch-data item count when none is given.
const defaultFetchLimit = 50

// CollageHandler serves collage data. Error messages are localized from
// the Accept-Language header.
type CollageHandler struct {
	svc     *service.CollageService
	catalog *i18n.Catalog
	logger  *zap.Logger
}

// NewCollageHandler creates a new CollageHandler.
func NewCollageHandler(svc *service.CollageService, catalog *i18n.Catalog, logger *zap.Logger) *CollageHandler {
	return &CollageHandler{svc: svc, catalog: catalog, logger: logger}
}

// GetCollage returns CollageData.
// Route: GET /api/v1/collage?username=rj&period=overall&type=albums&gridSize=3x3
func (h *CollageHandler) GetCollage(c *gin.Context) {
	locale := i18n.Negotiate(c.GetHeader("Accept-Language"))

	req, ok := h.bindRequest(c, locale, model.TypeAlbums)
	if !ok {
		return
	}
	req.GridSize = model.GridSize(c.DefaultQuery("gridSize", string(model.Grid3x3)))
	if !req.GridSize.Valid() {
		h.fail(c, locale, http.StatusBadRequest, "errors.invalidParameter", map[string]string{"name": "gridSize"})
		return
	}

	data, err := h.svc.GetCollage(c.Request.Context(), req)
	if err != nil {
		h.fetchFailed(c, locale, req.Username, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.JSON(http.StatusOK, data)
}

// FetchData returns up to limit items in Last.fm's response shape.
// Route: GET /api/v1/fetch-data?username=rj&period=overall&type=artists&limit=50
func (h *CollageHandler) FetchData(c *gin.Context) {
	locale := i18n.Negotiate(c.GetHeader("Accept-Language"))

	req, ok := h.bindRequest(c, locale, model.TypeArtists)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFetchLimit)))
	if err != nil || limit <= 0 {
		h.fail(c, locale, http.StatusBadRequest, "errors.invalidParameter", map[string]string{"name": "limit"})
		return
	}

	res, err := h.svc.FetchData(c.Request.Context(), req.Username, req.Type, req.Period, limit)
	if err != nil {
		h.fetchFailed(c, locale, req.Username, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ValidateUser reports whether a Last.fm user exists.
// Route: GET /api/v1/validate-user?username=rj
func (h *CollageHandler) ValidateUser(c *gin.Context) {
	locale := i18n.Negotiate(c.GetHeader("Accept-Language"))

	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		h.fail(c, locale, http.StatusBadRequest, "errors.usernameRequired", nil)
		return
	}

	err := h.svc.ValidateUser(c.Request.Context(), username)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"valid": true})
	case errors.Is(err, provider.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"valid": false,
			"error": h.catalog.T(locale, "errors.lastfmUserNotFound", nil),
		})
	default:
		h.logger.Error("validating user", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"valid": false,
			"error": h.catalog.T(locale, "errors.validateFailed", nil),
		})
	}
}

// Stats returns cache and upstream call counters.
// Route: GET /api/v1/stats
func (h *CollageHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("getting stats", zap.Error(err))
		locale := i18n.Negotiate(c.GetHeader("Accept-Language"))
		h.fail(c, locale, http.StatusInternalServerError, "errors.internal", nil)
		return
	}
	c.JSON(http.StatusOK, st)
}

// bindRequest reads username, period and type. It writes a 400 and
// returns false when one of them is missing or invalid.
func (h *CollageHandler) bindRequest(c *gin.Context, locale string, defaultType model.ItemType) (provider.Request, bool) {
	req := provider.Request{
		Username: strings.TrimSpace(c.Query("username")),
		Period:   model.Period(c.DefaultQuery("period", string(model.PeriodOverall))),
		Type:     model.ItemType(c.DefaultQuery("type", string(defaultType))),
	}

	switch {
	case req.Username == "":
		h.fail(c, locale, http.StatusBadRequest, "errors.usernameRequired", nil)
		return req, false
	case !req.Type.Valid():
		h.fail(c, locale, http.StatusBadRequest, "errors.invalidType", nil)
		return req, false
	case !req.Period.Valid():
		h.fail(c, locale, http.StatusBadRequest, "errors.invalidParameter", map[string]string{"name": "period"})
		return req, false
	}
	return req, true
}

// fetchFailed maps service errors: unknown user is 404, bad input 400,
// anything else 500.
func (h *CollageHandler) fetchFailed(c *gin.Context, locale, username string, err error) {
	switch {
	case errors.Is(err, provider.ErrUserNotFound):
		h.fail(c, locale, http.StatusNotFound, "errors.userNotFound", nil)
	case errors.Is(err, service.ErrInvalidRequest):
		h.fail(c, locale, http.StatusBadRequest, "errors.invalidParameter", map[string]string{"name": "request"})
	default:
		h.logger.Error("fetching collage data",
			zap.String("username", username),
			zap.Error(err),
		)
		h.fail(c, locale, http.StatusInternalServerError, "errors.fetchFailed", nil)
	}
}

func (h *CollageHandler) fail(c *gin.Context, locale string, status int, key string, params map[string]string) {
	c.JSON(status, gin.H{"error": h.catalog.T(locale, key, params)})
}
