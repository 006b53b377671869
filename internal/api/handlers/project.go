package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventstock/eventstock/internal/core/project"
)

type ProjectHandler struct {
	projects *project.Service
}

func NewProjectHandler(projects *project.Service) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Products(c *gin.Context) {
	products, err := h.projects.Products(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProjectHandler) AddProduct(c *gin.Context) {
	var req project.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.projects.AddProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.JSON(http.StatusCreated, res.Project)
}

func (h *ProjectHandler) RemoveProduct(c *gin.Context) {
	res, err := h.projects.RemoveProduct(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	setPersisted(c, res.Persisted)
	c.JSON(http.StatusOK, res.Project)
}
