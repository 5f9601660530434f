package utils

import (
	"context"

	"github.com/mmdatafocus/requisition_inbound/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyAuthUser      = appctx.ContextKeyAuthUser
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetAuthUserFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAuthUser)
}

func SetAuthUserInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyAuthUser, username)
}
