package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/shop"
)

func (a *API) listShopItems(c *gin.Context) {
	activeOnly := !currentUser(c).Rank.CanAdministrate()
	items, err := a.Shop.List(c.Request.Context(), activeOnly)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Stock       int    `json:"stock" binding:"required,min=1"`
}

func (a *API) createShopItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	it, err := a.Shop.CreateItem(c.Request.Context(), shop.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CreatedBy:   currentUser(c).ID,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (a *API) retireShopItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.Shop.Deactivate(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retired": id})
}

func (a *API) buyShopItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u := currentUser(c)
	it, err := a.Shop.Purchase(c.Request.Context(), u.ID, id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Log.Info("purchase", "user_id", u.ID, "item_id", it.ID, "price", it.Price)
	c.JSON(http.StatusOK, gin.H{"item": it})
}
