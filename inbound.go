package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/metrics"
	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/sirupsen/logrus"
)

var ErrEmptyBody = errors.New("request body is empty")

const (
	messageSaved         = "Data saved successfully."
	messageEmptyBody     = "Request body is empty."
	messageInvalidJSON   = "Invalid JSON body."
	messageNotObject     = "JSON body must be an object."
	messageBodyTooLarge  = "Request body is too large."
	messageSaveFailed    = "Failed to save data."
	unknownRequestDetail = "unknown"
)

type ingestResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	DatabaseId   int             `json:"database_id"`
	Files        artifacts.Files `json:"files"`
	Timestamp    string          `json:"timestamp"`
	DataReceived payload.Value   `json:"data_received"`
}

// parseInboundBody accepts only a non-blank body holding a JSON object.
func parseInboundBody(body []byte) (payload.Value, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return payload.Value{}, ErrEmptyBody
	}
	return payload.ParseObject(body)
}

func (app *application) requestMetadata(c *gin.Context, received time.Time) payload.Metadata {
	return payload.Metadata{
		ReceivedAt:  utils.FormatDate(received, app.settings.Location()),
		RemoteIp:    orUnknown(c.ClientIP()),
		UserAgent:   orUnknown(c.GetHeader("User-Agent")),
		ContentType: orUnknown(c.GetHeader("Content-Type")),
		Received:    received,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownRequestDetail
	}
	return s
}

// ingestHandler runs behind BasicAuthMiddleware: parse, write the artifact triple, then persist.
func (app *application) ingestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		cid, _ := utils.GetCorrelationIdFromContext(ctx)

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, app.settings.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeBadRequest).Inc()
			if errors.As(err, &tooLarge) {
				middlewares.AbortWithMessage(c, http.StatusRequestEntityTooLarge, messageBodyTooLarge)
				return
			}
			middlewares.AbortWithMessage(c, http.StatusBadRequest, messageInvalidJSON)
			return
		}

		data, err := parseInboundBody(body)
		if err != nil {
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeBadRequest).Inc()
			switch {
			case errors.Is(err, ErrEmptyBody):
				middlewares.AbortWithMessage(c, http.StatusBadRequest, messageEmptyBody)
			case errors.Is(err, payload.ErrNotObject):
				middlewares.AbortWithMessage(c, http.StatusBadRequest, messageNotObject)
			default:
				middlewares.AbortWithMessage(c, http.StatusBadRequest, messageInvalidJSON)
			}
			return
		}

		meta := app.requestMetadata(c, time.Now())

		files, err := app.writer.Write(ctx, meta, data)
		if err != nil {
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			config.LogError(logger, "inbound.go", "ingestHandler", "write artifacts", cid, err)
			middlewares.AbortWithMessage(c, http.StatusInternalServerError, messageSaveFailed)
			return
		}

		headerId, err := app.ingestor.Save(ctx, meta, data, files)
		if err != nil {
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			config.LogError(logger, "inbound.go", "ingestHandler", "save to database", logrus.Fields{
				"correlation_id": cid,
				"file_id":        files.FileId(),
			}, err)
			middlewares.AbortWithMessage(c, http.StatusInternalServerError, messageSaveFailed)
			return
		}

		metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeSaved).Inc()
		authUser, _ := utils.GetAuthUserFromContext(ctx)
		logger.WithFields(logrus.Fields{
			"field":          "ingestHandler",
			"correlation_id": cid,
			"auth_user":      authUser,
			"header_id":      headerId,
			"file_id":        files.FileId(),
		}).Info("inbound payload saved")

		c.JSON(http.StatusOK, ingestResponse{
			Success:      true,
			Message:      messageSaved,
			DatabaseId:   headerId,
			Files:        files,
			Timestamp:    middlewares.ResponseTimestamp(),
			DataReceived: data,
		})
	}
}

type endpointDoc struct {
	Route       string `json:"route"`
	Description string `json:"description"`
}

var endpointDocs = []endpointDoc{
	{"POST /api/inbound", "Save inbound data (requires Basic Auth)"},
	{"GET /data", "View data table (HTML)"},
	{"GET /data?file={filename}", "Download/view file"},
	{"GET /data?items={id}", "View items for header"},
	{"GET /data?approvals={id}", "View approval chain"},
	{"GET /data/export.xlsx", "Download header listing (XLSX)"},
	{"GET /api/headers", "API: List all headers (JSON)"},
	{"GET /api/headers/{id}", "API: Get header detail (JSON)"},
	{"GET /api/headers/{id}/items", "API: Get items for header (JSON)"},
	{"GET /api/headers/{id}/approvals", "API: Get approvals for header (JSON)"},
}

func (app *application) apiInfoHandler(c *gin.Context) {
	endpoints := make(map[string]string, len(endpointDocs))
	for _, e := range endpointDocs {
		endpoints[e.Route] = e.Description
	}
	c.JSON(http.StatusOK, gin.H{
		"app":       "KPN Validation Test API",
		"version":   "1.0.0",
		"endpoints": endpoints,
		"timestamp": middlewares.ResponseTimestamp(),
	})
}
