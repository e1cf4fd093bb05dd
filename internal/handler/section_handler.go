package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/editor"
	"go.uber.org/zap"
)

type fieldRequest struct {
	Path  string `json:"path" binding:"required"`
	Value any    `json:"value"`
}

type itemRequest struct {
	Path string `json:"path" binding:"required"`
	Item any    `json:"item"`
}

type removeItemRequest struct {
	Path  string `json:"path" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

func (a *API) editorFor(c *gin.Context, section *content.Section) *editor.Editor {
	return a.workspaces.Open(c.Request.Context(), sessionToken(c), section)
}

func (a *API) sectionParam(c *gin.Context) (*content.Section, bool) {
	section, ok := content.LookupSection(c.Param("section"))
	if !ok {
		respondError(c, http.StatusNotFound, "Unknown content section")
		return nil, false
	}
	return section, true
}

func editorPageData(ed *editor.Editor) gin.H {
	v := ed.View()
	return gin.H{
		"view":     v,
		"controls": buildControls(v.Fields, v.Document, ""),
	}
}

// ShowSectionEditor 渲染某个栏目的后台编辑页
func (a *API) ShowSectionEditor(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		section, ok := content.LookupSection(name)
		if !ok {
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		ed := a.editorFor(c, section)
		a.renderHTML(c, http.StatusOK, "editor.html", a.adminPage(c, section.Name, section.Title+" Manager", editorPageData(ed)))
	}
}

// GetSection returns the session's working copy of the section.
func (a *API) GetSection(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": a.editorFor(c, section).View()})
}

// ReloadSection discards unsaved edits and loads the stored document again.
func (a *API) ReloadSection(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	ed, err := a.workspaces.Reload(c.Request.Context(), sessionToken(c), section)
	if errors.Is(err, editor.ErrSaveInProgress) {
		respondError(c, http.StatusConflict, "Wait for the save to finish before discarding edits")
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": ed.View()})
}

// UpdateSectionField replaces one value of the working copy.
func (a *API) UpdateSectionField(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	var payload fieldRequest
	if !bindJSON(c, &payload, "A field path is required") {
		return
	}
	ed := a.editorFor(c, section)
	if err := ed.SetField(payload.Path, payload.Value); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": ed.View()})
}

// AddSectionItem appends an element to a list of the working copy.
func (a *API) AddSectionItem(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	var payload itemRequest
	if !bindJSON(c, &payload, "A list path is required") {
		return
	}
	ed := a.editorFor(c, section)
	if err := ed.AddListItem(payload.Path, payload.Item); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": ed.View()})
}

// RemoveSectionItem removes a list element by index.
func (a *API) RemoveSectionItem(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	var payload removeItemRequest
	if !bindJSON(c, &payload, "A list path and index are required") {
		return
	}
	ed := a.editorFor(c, section)
	if err := ed.RemoveListItem(payload.Path, *payload.Index); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": ed.View()})
}

// SaveSection writes the whole working copy to the store.
func (a *API) SaveSection(c *gin.Context) {
	section, ok := a.sectionParam(c)
	if !ok {
		return
	}
	ed := a.editorFor(c, section)
	err := ed.Save(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"notice": ed.Notice(), "section": ed.View()})
	case errors.Is(err, editor.ErrSaveInProgress):
		respondError(c, http.StatusConflict, "A save is already in progress")
	default:
		a.log.Warn("save section failed", zap.String("section", section.Name), zap.Error(err))
		notice := ed.Notice()
		message := "Save failed"
		if notice != nil {
			message = notice.Message
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": message, "notice": notice})
	}
}

func respondMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidPath),
		errors.Is(err, content.ErrIndexOutOfRange),
		errors.Is(err, content.ErrNotAList),
		errors.Is(err, content.ErrTypeMismatch):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "Failed to update the document")
	}
}
