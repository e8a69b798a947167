package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/theocluzel/esclavedigital/internal/middleware"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// ChapterHandler serves gated book content.
type ChapterHandler struct {
	Chapters store.ChapterStore
}

func NewChapterHandler(chapters store.ChapterStore) *ChapterHandler {
	return &ChapterHandler{Chapters: chapters}
}

// GetChapter returns one chapter. The session gate runs before this; the
// access flag is checked here, and a missing flag is a 403, not a 404.
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Non autorisé")
		return
	}
	if !account.HasBookAccess() {
		util.Error(c, http.StatusForbidden, "Accès au livre requis")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusNotFound, "Chapitre non trouvé")
		return
	}

	chapter, err := h.Chapters.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		util.Error(c, http.StatusNotFound, "Chapitre non trouvé")
		return
	}
	if err != nil {
		log.Printf("get chapter %d: %v", id, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	c.JSON(http.StatusOK, chapter)
}
