package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/service"
	"github.com/kalagasite/internal/view"
	"go.uber.org/zap"
)

const contactFailedMessage = "Failed to send message. Please try again."

type contentGroup struct {
	Key   string
	Value any
}

// publicPages 描述每个栏目使用的模板
var publicPages = map[string]struct {
	template string
	title    string
}{
	content.SectionHome:           {template: "home.html", title: "Home"},
	content.SectionAbout:          {template: "about.html", title: "About"},
	content.SectionServices:       {template: "services.html", title: "Services"},
	content.SectionProduct:        {template: "products.html", title: "Products"},
	content.SectionCompanies:      {template: "companies.html", title: "Companies"},
	content.SectionSocialServices: {template: "social_services.html", title: "Social Services"},
	content.SectionContact:        {template: "contact.html", title: "Contact"},
}

func (a *API) publicPage(c *gin.Context, section string, doc content.Tree, data gin.H) gin.H {
	nav := view.PublicNav()
	payload := gin.H{
		"nav":     nav,
		"active":  view.ActiveKey(nav, c.Request.URL.Path),
		"title":   publicPages[section].title,
		"content": doc,
	}
	for key, value := range data {
		payload[key] = value
	}
	return payload
}

// fetchSection loads a section for display. On a store failure the service
// has already logged it and returned the default document.
func (a *API) fetchSection(c *gin.Context, name string) content.Tree {
	doc, _ := a.contents.Fetch(c.Request.Context(), name)
	return doc
}

// ShowSectionPage renders the public page of one section.
func (a *API) ShowSectionPage(name string) gin.HandlerFunc {
	page := publicPages[name]
	return func(c *gin.Context) {
		doc := a.fetchSection(c, name)
		data := gin.H{}

		switch name {
		case content.SectionServices:
			data["categories"] = orderedGroups(doc, "categories")
		case content.SectionProduct:
			products, err := a.products.List(c.Request.Context())
			if err != nil {
				a.log.Warn("list products failed", zap.Error(err))
			}
			data["products"] = products
		}

		a.renderHTML(c, http.StatusOK, page.template, a.publicPage(c, name, doc, data))
	}
}

func orderedGroups(doc content.Tree, path string) []contentGroup {
	var keys []string
	if section, ok := content.LookupSection(content.SectionServices); ok {
		for _, field := range section.Fields {
			if field.Path == path {
				keys = field.Keys
			}
		}
	}
	groups, _ := fieldValue(doc, path).(map[string]any)
	out := make([]contentGroup, 0, len(groups))
	for _, key := range content.OrderedKeys(groups, keys) {
		out = append(out, contentGroup{Key: key, Value: groups[key]})
	}
	return out
}

// ShowContact 渲染联系页面与空白表单
func (a *API) ShowContact(c *gin.Context) {
	doc := a.fetchSection(c, content.SectionContact)
	a.renderHTML(c, http.StatusOK, "contact.html", a.publicPage(c, content.SectionContact, doc, gin.H{
		"form":   service.ContactInput{},
		"errors": service.ValidationErrors{},
	}))
}

// SubmitContactForm handles the HTML form post. Validation failures re-render
// the form with field messages; success clears it and shows a confirmation.
func (a *API) SubmitContactForm(c *gin.Context) {
	var input service.ContactInput
	_ = c.ShouldBind(&input)

	status := http.StatusOK
	data := gin.H{"form": input, "errors": service.ValidationErrors{}}

	_, err := a.contacts.Submit(c.Request.Context(), input)
	var invalid service.ValidationErrors
	switch {
	case err == nil:
		a.observeContact("ok")
		data["form"] = service.ContactInput{}
		data["submitted"] = true
	case errors.As(err, &invalid):
		a.observeContact("invalid")
		status = http.StatusBadRequest
		data["errors"] = invalid
	default:
		a.observeContact("error")
		a.log.Error("store contact submission failed", zap.Error(err))
		status = http.StatusBadGateway
		data["formError"] = contactFailedMessage
	}

	doc := a.fetchSection(c, content.SectionContact)
	a.renderHTML(c, status, "contact.html", a.publicPage(c, content.SectionContact, doc, data))
}

func (a *API) observeContact(result string) {
	if a.metrics != nil {
		a.metrics.ContactSubmissions.WithLabelValues(result).Inc()
	}
}

// GetContent 以 JSON 返回合并默认值后的栏目文档
func (a *API) GetContent(c *gin.Context) {
	name := c.Param("section")
	doc, err := a.contents.Fetch(c.Request.Context(), name)
	if errors.Is(err, service.ErrUnknownSection) {
		respondError(c, http.StatusNotFound, "Unknown content section")
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": name, "content": doc})
}

// GetPublicProducts lists product records for the public site.
func (a *API) GetPublicProducts(c *gin.Context) {
	products, err := a.products.List(c.Request.Context())
	if err != nil {
		a.log.Warn("list products failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Error fetching products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SubmitContact accepts a JSON contact submission.
func (a *API) SubmitContact(c *gin.Context) {
	var input service.ContactInput
	if !bindJSON(c, &input, "Invalid contact payload") {
		return
	}
	submission, err := a.contacts.Submit(c.Request.Context(), input)
	var invalid service.ValidationErrors
	switch {
	case err == nil:
		a.observeContact("ok")
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Thank you for your message! We'll get back to you soon.",
			"submission": submission,
		})
	case errors.As(err, &invalid):
		a.observeContact("invalid")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please correct the highlighted fields", "fields": invalid})
	default:
		a.observeContact("error")
		a.log.Error("store contact submission failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, contactFailedMessage)
	}
}
