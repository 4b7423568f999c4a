package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gerunddev/markbridge/internal/cache"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gin-gonic/gin"
)

type ConvertRequest struct {
	From string `json:"from" binding:"required,oneof=markdown md bbcode bb text txt plain"`
	To   string `json:"to" binding:"required,oneof=markdown md bbcode bb html htm text txt plain"`
	Text string `json:"text" binding:"max=1048576"`
}

type ConvertResponse struct {
	Output string `json:"output"`
	Cached bool   `json:"cached"`
}

type FormatsResponse struct {
	Sources []convert.Format `json:"sources"`
	Targets []convert.Format `json:"targets"`
}

func (service *Service) formats(ctx *gin.Context) {
	resp := FormatsResponse{Targets: convert.Formats}
	for _, f := range convert.Formats {
		if f.Readable() {
			resp.Sources = append(resp.Sources, f)
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

func (service *Service) convertText(ctx *gin.Context) {
	var req ConvertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	// both names passed oneof, so they resolve
	from, _ := convert.ParseFormat(req.From)
	to, _ := convert.ParseFormat(req.To)
	input := []byte(req.Text)

	key := cache.Key(from.String(), to.String(), input)
	entry, err := service.cache.Get(ctx, key)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, ConvertResponse{Output: entry.Output, Cached: true})
		return
	case !errors.Is(err, cache.ErrMiss):
		service.logger.CacheError("get", err)
	}

	output, err := service.converter.Convert(from, to, input)
	if err != nil {
		if loc, ok := convert.Locate(err, input); ok {
			resp := NewErrorResponse(loc.Err)
			resp.Kind = loc.Err.Kind.String()
			resp.Line = loc.Line
			resp.Column = loc.Column
			ctx.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		service.logger.ConversionError(from.String(), to.String(), err)
		ctx.JSON(http.StatusInternalServerError, NewErrorResponse(ErrInternal))
		return
	}

	if err := service.cache.Set(ctx, key, cache.Entry{Output: output, CreatedAt: time.Now()}, service.config.CacheTTL); err != nil {
		service.logger.CacheError("set", err)
	}

	ctx.JSON(http.StatusOK, ConvertResponse{Output: output})
}
