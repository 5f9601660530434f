package main

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const messageFileNotFound = "File not found"

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"text":        textOrDash,
		"number":      intOrDash,
		"when":        timestampOrDash,
		"amount":      formatAmount,
		"statusClass": statusClass,
		"statusTitle": statusTitle,
		"circleClass": circleClass,
		"notLast":     func(i int, n int) bool { return i < n-1 },
	}).ParseFS(templateFS, "templates/*.html")
}

// dataHandler serves the HTML views and the raw artifact passthrough under /data.
func (app *application) dataHandler(c *gin.Context) {
	if file := c.Query("file"); file != "" {
		app.serveArtifact(c, file)
		return
	}
	if raw := c.Query("items"); raw != "" {
		app.renderHeaderPage(c, raw, "items.html")
		return
	}
	if raw := c.Query("approvals"); raw != "" {
		app.renderHeaderPage(c, raw, "approvals.html")
		return
	}
	app.renderListPage(c)
}

func (app *application) serveArtifact(c *gin.Context, name string) {
	artifact, err := artifacts.Read(app.writer.Dir(), name)
	if err != nil {
		if errors.Is(err, artifacts.ErrArtifactNotFound) {
			middlewares.AbortWithMessage(c, http.StatusNotFound, messageFileNotFound)
			return
		}
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "data.go", "serveArtifact", name, cid, err)
		middlewares.AbortWithMessage(c, http.StatusInternalServerError, "Failed to read file")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, artifact.Name))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}

func (app *application) renderListPage(c *gin.Context) {
	ctx := c.Request.Context()
	view := gin.H{"Location": app.settings.Location()}

	headers, err := models.ListHeaders(ctx, app.db)
	if err == nil {
		var summaries []*models.HeaderSummary
		summaries, err = middlewares.LoadHeaderSummaries(ctx, headers)
		view["Headers"] = summaries
	}
	if err != nil {
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		config.LogError(config.GetLogger(), "data.go", "renderListPage", "load headers", cid, err)
		view["DBError"] = messageDatabaseError
		view["Headers"] = []*models.HeaderSummary{}
	}
	c.HTML(http.StatusOK, "list.html", view)
}

func (app *application) renderHeaderPage(c *gin.Context, raw string, page string) {
	ctx := c.Request.Context()
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", nil)
		return
	}
	header, err := models.GetHeader(ctx, app.db, id)
	if err != nil {
		if errors.Is(err, models.ErrHeaderNotFound) {
			c.HTML(http.StatusNotFound, "not_found.html", nil)
			return
		}
		app.renderPageError(c, page, err)
		return
	}

	view := gin.H{"Header": header, "Location": app.settings.Location()}
	switch page {
	case "items.html":
		items, err := models.ListItems(ctx, app.db, id)
		if err != nil {
			app.renderPageError(c, page, err)
			return
		}
		view["Items"] = items
	default:
		approvals, err := models.ListApprovals(ctx, app.db, id)
		if err != nil {
			app.renderPageError(c, page, err)
			return
		}
		view["Approvals"] = approvals
	}
	c.HTML(http.StatusOK, page, view)
}

func (app *application) renderPageError(c *gin.Context, page string, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), "data.go", "renderHeaderPage", page, cid, err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Message": messageDatabaseError, "CorrelationId": cid})
}

func textOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func timestampOrDash(t *time.Time) string {
	if s := utils.FormatTimestamp(t); s != nil {
		return *s
	}
	return "-"
}

// formatAmount renders two decimals with thousands separators; null shows as 0.00.
func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "0.00"
	}
	fixed := d.Decimal.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func statusClass(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(*s), " ", "_")
}

// statusTitle turns approved_with_note into "Approved With Note".
func statusTitle(s *string, fallback string) string {
	value := fallback
	if s != nil && *s != "" {
		value = *s
	}
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func circleClass(s *string) string {
	if s != nil && (*s == "approved" || *s == "rejected") {
		return *s
	}
	return "pending"
}
