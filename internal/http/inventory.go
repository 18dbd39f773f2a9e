package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-api/internal/domain"
)

type itemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	Price       *float64 `json:"price"`
}

func (r itemRequest) fields() domain.ItemFields {
	return domain.ItemFields{
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
	}
}

// inventoryRoutes serves one backend's namespace. Every handler runs behind
// requireSession and passes the session owner down.
type inventoryRoutes struct {
	h       *Handler
	backend Backend
}

func (r *inventoryRoutes) record(op string, err error) {
	r.h.metrics.IncrementInventoryOps(r.backend.Name, op, outcome(err))
}

func (r *inventoryRoutes) create(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := r.backend.Items.CreateItem(c.Request.Context(), ownerID(c), req.fields())
	r.record("create", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item created successfully",
		"item_id": item.ID,
	})
}

func (r *inventoryRoutes) list(c *gin.Context) {
	items, err := r.backend.Items.ListItems(c.Request.Context(), ownerID(c))
	r.record("list", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	resp := make([]ItemResponse, len(items))
	for i := range items {
		resp[i] = itemToResponse(items[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (r *inventoryRoutes) get(c *gin.Context) {
	item, err := r.backend.Items.GetItem(c.Request.Context(), ownerID(c), c.Param("id"))
	r.record("get", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemToResponse(*item))
}

func (r *inventoryRoutes) update(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.fields().Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	item, err := r.backend.Items.UpdateItem(c.Request.Context(), ownerID(c), c.Param("id"), req.fields())
	r.record("update", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item updated successfully",
		"item":    itemToResponse(*item),
	})
}

func (r *inventoryRoutes) delete(c *gin.Context) {
	err := r.backend.Items.DeleteItem(c.Request.Context(), ownerID(c), c.Param("id"))
	r.record("delete", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (r *inventoryRoutes) export(c *gin.Context) {
	result, err := r.h.exports.Export(c.Request.Context(), ownerID(c), r.backend.Name, r.backend.Items)
	r.record("export", err)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ExportResponse{
		Location: result.Location,
		URL:      result.URL,
		Count:    result.Count,
	})
}

func (r *inventoryRoutes) listExports(c *gin.Context) {
	exports, err := r.h.exports.List(c.Request.Context(), ownerID(c), r.backend.Name)
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	resp := make([]StoredExportResponse, len(exports))
	for i := range exports {
		resp[i] = exportToResponse(exports[i])
	}
	c.JSON(http.StatusOK, resp)
}
