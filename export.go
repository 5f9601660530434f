package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/models/reports"
	"github.com/mmdatafocus/requisition_inbound/utils"
)

func (app *application) exportHandler(c *gin.Context) {
	ctx := c.Request.Context()
	headers, err := models.ListHeaders(ctx, app.db)
	if err != nil {
		databaseFailure(c, "exportHandler", err)
		return
	}
	summaries, err := middlewares.LoadHeaderSummaries(ctx, headers)
	if err != nil {
		databaseFailure(c, "exportHandler", err)
		return
	}

	filename := fmt.Sprintf("inbound_headers_%s.xlsx", time.Now().In(app.settings.Location()).Format(utils.FileTimestampLayout))
	c.Header("Content-Type", reports.XLSXContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := reports.WriteHeadersWorkbook(c.Writer, summaries); err != nil {
		_ = c.Error(err)
	}
}
