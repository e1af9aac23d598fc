package service

import (
	"context"

	"MarketServer/consts"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"

	"go.uber.org/zap"
)

// internalError 记录内部错误日志，返回 CodeInternalError
func internalError(ctx context.Context, msg string, err error, fields ...zap.Field) error {
	logger.Error(ctx, msg, append(fields, logger.ErrorField("error", err))...)
	return bizerr.Wrap(consts.CodeInternalError, err)
}
