package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/utils"
)

const (
	messageInvalidHeaderId = "Invalid header ID"
	messageHeaderNotFound  = "Header not found"
	messageDatabaseError   = "Database error"
)

// headerIdParam parses :id, writing the 400 response itself when it is not an integer.
func headerIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middlewares.AbortWithMessage(c, http.StatusBadRequest, messageInvalidHeaderId)
		return 0, false
	}
	return id, true
}

func databaseFailure(c *gin.Context, funcName string, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), "api.go", funcName, c.Request.URL.Path, cid, err)
	middlewares.AbortWithMessage(c, http.StatusInternalServerError, messageDatabaseError)
}

func listResponse[T any](c *gin.Context, rows []T) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(rows),
		"data":    rows,
	})
}

func (app *application) listHeadersHandler(c *gin.Context) {
	ctx := c.Request.Context()
	headers, err := models.ListHeaders(ctx, app.db)
	if err != nil {
		databaseFailure(c, "listHeadersHandler", err)
		return
	}
	summaries, err := middlewares.LoadHeaderSummaries(ctx, headers)
	if err != nil {
		databaseFailure(c, "listHeadersHandler", err)
		return
	}
	listResponse(c, summaries)
}

func (app *application) getHeaderHandler(c *gin.Context) {
	id, ok := headerIdParam(c)
	if !ok {
		return
	}
	detail, err := models.GetHeaderDetail(c.Request.Context(), app.db, id)
	if err != nil {
		if errors.Is(err, models.ErrHeaderNotFound) {
			middlewares.AbortWithMessage(c, http.StatusNotFound, messageHeaderNotFound)
			return
		}
		databaseFailure(c, "getHeaderHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

// Unknown header ids yield an empty list rather than 404 on the child routes.
func (app *application) listItemsHandler(c *gin.Context) {
	id, ok := headerIdParam(c)
	if !ok {
		return
	}
	items, err := models.ListItems(c.Request.Context(), app.db, id)
	if err != nil {
		databaseFailure(c, "listItemsHandler", err)
		return
	}
	listResponse(c, items)
}

func (app *application) listApprovalsHandler(c *gin.Context) {
	id, ok := headerIdParam(c)
	if !ok {
		return
	}
	approvals, err := models.ListApprovals(c.Request.Context(), app.db, id)
	if err != nil {
		databaseFailure(c, "listApprovalsHandler", err)
		return
	}
	listResponse(c, approvals)
}
