package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-supply-api/internal/platform/sqlbuilder"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

// Handler serves the REST surface of one entity. Not-found outcomes are
// shaped here; every other failure is recorded with c.Error for the
// centralized error handler.
type Handler[T any] struct {
	store     Store[T]
	entity    Entity[T]
	responder *apperrors.Responder
}

// NewHandler builds the routes for entity on top of store.
func NewHandler[T any](store Store[T], entity Entity[T]) *Handler[T] {
	return &Handler[T]{store: store, entity: entity, responder: apperrors.DefaultResponder}
}

// Register mounts the entity under /<Path> on router.
func (h *Handler[T]) Register(router gin.IRouter) {
	g := router.Group("/" + h.entity.Path)
	g.POST("", h.create)
	g.GET("", h.list)
	for _, fk := range h.entity.ForeignKeys {
		g.GET("/"+fk.Route+"/:value", h.listBy(fk))
	}
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	for _, d := range h.entity.Derived {
		g.GET("/:id/"+d.Name, h.derived(d))
	}
	for _, a := range h.entity.Actions {
		g.PUT("/:id/"+a.Name, h.action(a))
	}
}

func (h *Handler[T]) create(c *gin.Context) {
	body, ok := h.decodeBody(c)
	if !ok {
		return
	}
	fields, err := h.entity.CreateFields(body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	item, err := h.store.Create(c.Request.Context(), fields)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler[T]) list(c *gin.Context) {
	items, err := h.store.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler[T]) listBy(fk ForeignKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := strconv.ParseInt(c.Param("value"), 10, 64)
		if err != nil {
			_ = c.Error(apperrors.NewValidation(fk.Field, "must be an integer"))
			return
		}
		items, err := h.store.FindBy(c.Request.Context(), fk.Field, value)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func (h *Handler[T]) get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	item, found, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !found {
		h.responder.NotFound(c, h.entity.Name, id)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler[T]) update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	body, ok := h.decodeBody(c)
	if !ok {
		return
	}
	fields, err := h.entity.UpdateFields(body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.applyUpdate(c, id, fields)
}

func (h *Handler[T]) action(a Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.parseID(c)
		if !ok {
			return
		}
		body, ok := h.decodeBody(c)
		if !ok {
			return
		}
		fields, err := h.entity.ActionFields(a, body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		h.applyUpdate(c, id, fields)
	}
}

func (h *Handler[T]) applyUpdate(c *gin.Context, id int64, fields sqlbuilder.Fields) {
	item, err := h.store.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler[T]) delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[T]) derived(d Derived[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.parseID(c)
		if !ok {
			return
		}
		item, found, err := h.store.FindByID(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if !found {
			h.responder.NotFound(c, h.entity.Name, id)
			return
		}
		result, err := d.Compute(c.Request.Context(), item)
		if err != nil {
			h.fail(c, id, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handler[T]) fail(c *gin.Context, id int64, err error) {
	if apperrors.IsNotFound(err) {
		h.responder.NotFound(c, h.entity.Name, id)
		return
	}
	_ = c.Error(err)
}

func (h *Handler[T]) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.NewValidation("id", fmt.Sprintf("invalid %s identifier %q", h.entity.Label(), c.Param("id"))))
		return 0, false
	}
	return id, true
}

// decodeBody reads a JSON object keeping numbers exact so integer columns
// can reject fractions.
func (h *Handler[T]) decodeBody(c *gin.Context) (map[string]any, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		_ = c.Error(apperrors.NewValidation("", "invalid JSON body: "+err.Error()))
		return nil, false
	}
	if body == nil {
		_ = c.Error(apperrors.NewValidation("", "request body must be a JSON object"))
		return nil, false
	}
	return body, true
}
