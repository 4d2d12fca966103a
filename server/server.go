// Package server serves the synthesized release notes over HTTP so they can
// be previewed before running a release.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menghanl/release-runner/internal/logging"
	"github.com/menghanl/release-runner/notes"
)

// NotesBuilder builds the structured default notes.
type NotesBuilder interface {
	Build(ctx context.Context) (*notes.Notes, error)
}

// Response is the body of GET /notes.
type Response struct {
	Notes    *notes.Notes `json:"notes"`
	Markdown string       `json:"markdown"`
}

// New returns the preview router. Notes are rebuilt on every request.
func New(b NotesBuilder, log *logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/notes", func(c *gin.Context) {
		ns, err := b.Build(c.Request.Context())
		if err != nil {
			log.Errorf("build notes: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, Response{Notes: ns, Markdown: ns.Markdown()})
	})
	r.GET("/notes.md", func(c *gin.Context) {
		ns, err := b.Build(c.Request.Context())
		if err != nil {
			log.Errorf("build notes: %v", err)
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, ns.Markdown())
	})
	return r
}
