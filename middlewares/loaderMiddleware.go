package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/requisition_inbound/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the per-request data loaders injected by LoaderMiddleware.
type Loaders struct {
	ItemCountLoader     *dataloader.Loader[int, int64]
	ApprovalCountLoader *dataloader.Loader[int, int64]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	itemCountReader := &headerCountReader{db: conn, count: models.CountItemsByHeader}
	approvalCountReader := &headerCountReader{db: conn, count: models.CountApprovalsByHeader}

	return &Loaders{
		ItemCountLoader:     dataloader.NewBatchedLoader(itemCountReader.getCounts, dataloader.WithWait[int, int64](time.Millisecond)),
		ApprovalCountLoader: dataloader.NewBatchedLoader(approvalCountReader.getCounts, dataloader.WithWait[int, int64](time.Millisecond)),
	}
}

func LoaderMiddleware(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(conn)
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// For returns the request's loaders, or nil outside LoaderMiddleware.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// WithLoaders attaches loaders to a context that did not pass through the middleware.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
