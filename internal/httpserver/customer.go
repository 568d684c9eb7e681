package httpserver

import (
	"net/http"
	"strconv"

	"favorites-catalog/internal/domain"
	customersvc "favorites-catalog/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type createFavoriteRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *handlers) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.deps.Customers.Create(c.Request.Context(), customersvc.Input{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomer(*created))
}

func (h *handlers) getCustomer(c *gin.Context) {
	cust, err := h.deps.Customers.GetByID(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.deps.Customers.Update(c.Request.Context(), pathID(c, "id"), customersvc.UpdateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*updated))
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.deps.Customers.DeleteByID(c.Request.Context(), pathID(c, "id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listCustomers(c *gin.Context) {
	page, size, err := pageQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.deps.Customers.List(c.Request.Context(), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(res, toCustomer))
}

func (h *handlers) createFavorite(c *gin.Context) {
	var req createFavoriteRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	fav, err := h.deps.Favorites.Create(c.Request.Context(), pathID(c, "id"), req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFavorite(*fav))
}

func (h *handlers) listFavorites(c *gin.Context) {
	page, size, err := pageQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.deps.Favorites.ListByCustomer(c.Request.Context(), pathID(c, "id"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(res, toFavorite))
}

func (h *handlers) deleteFavorite(c *gin.Context) {
	if err := h.deps.Favorites.DeleteByID(c.Request.Context(), pathID(c, "id"), pathID(c, "favoriteId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Products.GetByID(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

// pathID parses a numeric path parameter. Non-numeric values become 0, which
// the services reject as a missing id.
func pathID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func pageQuery(c *gin.Context) (page, size int, err error) {
	if page, err = intQuery(c, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = intQuery(c, "size"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(`"` + name + `" parameter must be an integer`)
	}
	return v, nil
}
