package apitest

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-client/internal/api"
	"library-client/internal/models"
	"library-client/internal/shared/middleware"
	"library-client/internal/shared/response"
)

// Handler serves the REST collections of one model.
type Handler struct {
	db    *DB
	model models.Model
}

func NewHandler(db *DB, model models.Model) *Handler {
	return &Handler{db: db, model: model}
}

// List handles GET /{collection}[/:libraryId]
func (h *Handler) List(c *gin.Context) {
	libraryID, err := h.libraryID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows, err := h.db.List(h.model, libraryID, filterOf(c, h.model), withOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rows)
}

// Get handles GET /{collection}[/:libraryId]/:id
func (h *Handler) Get(c *gin.Context) {
	libraryID, id, err := h.ids(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	e, err := h.db.Get(h.model, libraryID, id, withOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, e)
}

// Exact handles GET /{collection}[/:libraryId]/exact/:name
func (h *Handler) Exact(c *gin.Context) {
	libraryID, err := h.libraryID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var probe models.Entity
	switch h.model {
	case models.ModelAuthor:
		probe = models.Author{FirstName: c.Param("firstName"), LastName: c.Param("lastName")}
	case models.ModelLibrary:
		probe = models.Library{Name: c.Param("name")}
	case models.ModelSeries:
		probe = models.Series{Name: c.Param("name")}
	case models.ModelStory:
		probe = models.Story{Name: c.Param("name")}
	case models.ModelUser:
		probe = models.User{Username: c.Param("username")}
	case models.ModelVolume:
		probe = models.Volume{Name: c.Param("name")}
	}

	e, err := h.db.Exact(h.model, libraryID, probe)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, e)
}

// Insert handles POST /{collection}[/:libraryId]
func (h *Handler) Insert(c *gin.Context) {
	libraryID, err := h.libraryID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	e, ok := h.bind(c)
	if !ok {
		return
	}

	row, err := h.db.Insert(libraryID, e)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, row)
}

// Update handles PUT /{collection}[/:libraryId]/:id
func (h *Handler) Update(c *gin.Context) {
	libraryID, id, err := h.ids(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	e, ok := h.bind(c)
	if !ok {
		return
	}

	row, err := h.db.Update(libraryID, id, e)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, row)
}

// Delete handles DELETE /{collection}[/:libraryId]/:id
func (h *Handler) Delete(c *gin.Context) {
	libraryID, id, err := h.ids(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	row, err := h.db.Delete(h.model, libraryID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, row)
}

// Children handles GET /{collection}/:libraryId/:id/:child
func (h *Handler) Children(c *gin.Context) {
	libraryID, id, child, err := h.relation(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows, err := h.db.Children(node{Model: h.model, ID: id}, libraryID, child, filterOf(c, child), withOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rows)
}

// Include handles POST /{collection}/:libraryId/:id/:child/:childId.
// Authors accept ?principal.
func (h *Handler) Include(c *gin.Context) {
	libraryID, id, child, err := h.relation(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	childID, err := parseID(c.Param("childId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	_, principal := c.GetQuery("principal")
	row, err := h.db.Link(node{Model: h.model, ID: id}, node{Model: child, ID: childID}, libraryID, principal)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, row)
}

// Exclude handles DELETE /{collection}/:libraryId/:id/:child/:childId
func (h *Handler) Exclude(c *gin.Context) {
	libraryID, id, child, err := h.relation(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	childID, err := parseID(c.Param("childId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	row, err := h.db.Unlink(node{Model: h.model, ID: id}, node{Model: child, ID: childID}, libraryID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, row)
}

func (h *Handler) bind(c *gin.Context) (models.Entity, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return nil, false
	}
	e, err := models.Decode(h.model, raw)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return nil, false
	}
	if v, ok := e.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			response.ErrorWithDetails(c, ToHTTPStatus(ErrInvalidBody), ToErrorCode(ErrInvalidBody), err.Error(), err)
			return nil, false
		}
	}
	return e, true
}

func (h *Handler) libraryID(c *gin.Context) (int64, error) {
	if !owned(h.model) {
		return models.Unpersisted, nil
	}
	return parseID(c.Param("libraryId"))
}

func (h *Handler) ids(c *gin.Context) (libraryID, id int64, err error) {
	if libraryID, err = h.libraryID(c); err != nil {
		return 0, 0, err
	}
	id, err = parseID(c.Param("id"))
	if h.model == models.ModelLibrary {
		libraryID = id
	}
	return libraryID, id, err
}

func (h *Handler) relation(c *gin.Context) (libraryID, id int64, child models.Model, err error) {
	if libraryID, id, err = h.ids(c); err != nil {
		return 0, 0, "", err
	}
	child, ok := modelOfSegment(c.Param("child"))
	if !ok {
		return 0, 0, "", ErrUnsupportedPath
	}
	return libraryID, id, child, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := ToHTTPStatus(err)
	if status >= 500 {
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.KeyRequestID)).
			Str("model", string(h.model)).
			Msg("request failed")
	}
	response.ErrorResponse(c, status, ToErrorCode(err), err.Error())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func modelOfSegment(seg string) (models.Model, bool) {
	for _, m := range []models.Model{models.ModelAuthor, models.ModelSeries, models.ModelStory, models.ModelVolume} {
		if s, err := api.Segment(m); err == nil && s == seg {
			return m, true
		}
	}
	return "", false
}

func filterOf(c *gin.Context, model models.Model) Filter {
	f := Filter{Name: c.Query("name")}
	if model == models.ModelUser {
		f.Name = c.Query("username")
	}
	_, f.Active = c.GetQuery("active")
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	return f
}

func withOf(c *gin.Context) With {
	has := func(key string) bool {
		_, ok := c.GetQuery(key)
		return ok
	}
	return With{
		Authors: has("withAuthors"),
		Library: has("withLibrary"),
		Series:  has("withSeries"),
		Stories: has("withStories"),
		Volumes: has("withVolumes"),
	}
}
