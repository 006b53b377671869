package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/view"
	"github.com/eventstock/eventstock/internal/core/viewstate"
)

type CollectionHandler struct {
	collections *collection.Service
}

func NewCollectionHandler(collections *collection.Service) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

// Views lists collection definitions so the panel can build its tables.
func (h *CollectionHandler) Views(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": h.collections.Views().List()})
}

func (h *CollectionHandler) List(c *gin.Context) {
	name := c.Param("name")
	def, err := h.collections.Views().Get(name)
	if err != nil {
		respondError(c, err)
		return
	}

	q, err := def.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	// A header click: ?toggle=<key> flips or moves the current sort.
	if key := c.Query(view.ParamToggle); key != "" {
		q = viewstate.SortState{Key: q.SortKey, Direction: q.Direction}.Toggle(key).Apply(q)
	}

	limit, _ := strconv.Atoi(c.DefaultQuery(view.ParamLimit, strconv.Itoa(collection.DefaultLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery(view.ParamOffset, "0"))

	resp, err := h.collections.List(c.Request.Context(), name, q, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CollectionHandler) Search(c *gin.Context) {
	name := c.Param("name")
	def, err := h.collections.Views().Get(name)
	if err != nil {
		respondError(c, err)
		return
	}

	var req collection.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := def.NormalizeQuery(req.Query)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.collections.List(c.Request.Context(), name, q, req.Limit, req.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Replace overwrites the whole collection with the posted array.
func (h *CollectionHandler) Replace(c *gin.Context) {
	var records []query.Record
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.collections.Replace(c.Request.Context(), c.Param("name"), records)
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.JSON(http.StatusOK, gin.H{"records": res.Records, "total": len(res.Records)})
}

func (h *CollectionHandler) Reload(c *gin.Context) {
	name := c.Param("name")
	n, err := h.collections.Reload(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": name, "total": n})
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var record query.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.collections.Create(c.Request.Context(), c.Param("name"), record)
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.JSON(http.StatusCreated, res.Record)
}

func (h *CollectionHandler) Get(c *gin.Context) {
	record, err := h.collections.Get(c.Request.Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *CollectionHandler) Update(c *gin.Context) {
	var patch query.Record
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.collections.Update(c.Request.Context(), c.Param("name"), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.JSON(http.StatusOK, res.Record)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	res, err := h.collections.Delete(c.Request.Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.Status(http.StatusNoContent)
}
