package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-homereel/media"
	"go-homereel/types"
)

// UploadPhotos ingests multipart photo uploads into the caller's
// session. Field "photos" carries the files; form value "role" tags
// them (interior/exterior), defaulting to interior.
func UploadPhotos(c *gin.Context, sessions *SessionStore) {
	sess := sessions.GetOrCreate(c.Query("session"))

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no photos in request"})
		return
	}

	role := types.Role(c.PostForm("role"))
	if role == "" {
		role = types.RoleInterior
	}

	ids := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		asset, err := media.Ingest(data, role)
		if err != nil {
			log.Printf("upload: rejected %s: %v", fh.Filename, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "file": fh.Filename})
			return
		}
		ids = append(ids, sess.Media.Add(asset, role))
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sess.ID,
		"ids":     ids,
		"count":   sess.Media.Len(),
	})
}

// ReorderPhotos applies a client-supplied ordering over the session's
// media set. The ordering must be a full permutation of current ids.
func ReorderPhotos(c *gin.Context, sessions *SessionStore) {
	var request struct {
		Session string   `json:"session"`
		IDs     []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := sessions.GetOrCreate(request.Session)
	if err := sess.Media.Reorder(request.IDs); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "order": request.IDs})
}
