package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

func (a *API) listGallery(c *gin.Context) {
	includeHidden := currentUser(c).Rank.CanAdministrate()
	items, err := a.Gallery.List(c.Request.Context(), includeHidden)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// uploadMedia stores the file under an opaque name and keeps only the
// metadata in the database.
func (a *API) uploadMedia(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	fileName := uuid.New().String() + filepath.Ext(header.Filename)
	if err := c.SaveUploadedFile(header, filepath.Join(a.MediaDir, fileName)); err != nil {
		a.fail(c, err)
		return
	}

	mime := header.Header.Get("Content-Type")
	it, err := a.Gallery.Add(c.Request.Context(), currentUser(c).ID, title, mime, fileName, header.Size)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (a *API) hideMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.Gallery.Hide(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": id})
}
