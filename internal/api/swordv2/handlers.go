package swordv2

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/sword"
)

// mimeErrorDocument is the content type of SWORD error documents.
const mimeErrorDocument = echo.MIMEApplicationXMLCharsetUTF8

// ServiceDocument handles GET /service-document.
func (c *Controller) ServiceDocument(ctx echo.Context) error {
	doc, err := server(ctx).ServiceDocument()
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.Blob(http.StatusOK, sword.MimeServiceDocument, doc)
}

// DepositNew handles POST /collection/:collection_id. A notify deposit answers
// 201 with the receipt and the container's edit URI as Location; a validate
// deposit answers 202 with no body.
func (c *Controller) DepositNew(ctx echo.Context) error {
	resp, err := server(ctx).DepositNew(ctx.Request().Context(), ctx.Param("collection_id"), depositRequest(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}

	if !resp.Created {
		return ctx.NoContent(http.StatusAccepted)
	}
	ctx.Response().Header().Set(echo.HeaderLocation, resp.EditURI)
	return ctx.Blob(http.StatusCreated, sword.MimeAtomEntry, resp.Receipt)
}

// GetContainer handles GET /entry/:entry_id.
func (c *Controller) GetContainer(ctx echo.Context) error {
	srv := server(ctx)
	reqCtx := ctx.Request().Context()
	id := ctx.Param("entry_id")

	exists, err := srv.ContainerExists(reqCtx, id)
	if err != nil {
		return c.handleError(ctx, err)
	}
	if !exists {
		return ctx.NoContent(http.StatusNotFound)
	}

	body, contentType, err := srv.GetContainer(reqCtx, id, negotiateContainer(ctx.Request().Header.Get(echo.HeaderAccept)))
	if err != nil {
		return c.handleError(ctx, err)
	}
	if body == nil {
		return ctx.NoContent(http.StatusNotAcceptable)
	}
	return ctx.Blob(http.StatusOK, contentType, body)
}

// GetMediaResource handles GET /entry/:entry_id/content by redirecting to the
// notification's package.
func (c *Controller) GetMediaResource(ctx echo.Context) error {
	srv := server(ctx)
	reqCtx := ctx.Request().Context()
	id := ctx.Param("entry_id")

	exists, err := srv.MediaResourceExists(reqCtx, id)
	if err != nil {
		return c.handleError(ctx, err)
	}
	if !exists {
		return ctx.NoContent(http.StatusNotFound)
	}

	resp, err := srv.GetMediaResource(reqCtx, id, ctx.Request().Header.Get(echo.HeaderAccept))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.Redirect(http.StatusFound, resp.URL)
}

// GetStatement handles GET /entry/:entry_id/statement/:type.
func (c *Controller) GetStatement(ctx echo.Context) error {
	mimeType, ok := statementMediaType(ctx.Param("type"))
	if !ok {
		return ctx.NoContent(http.StatusNotFound)
	}

	body, err := server(ctx).GetStatement(ctx.Request().Context(), ctx.Param("entry_id"), mimeType)
	if err != nil {
		return c.handleError(ctx, err)
	}
	if body == nil {
		return ctx.NoContent(http.StatusNotAcceptable)
	}
	return ctx.Blob(http.StatusOK, mimeType, body)
}

// ListCollection handles GET /collection/:collection_id.
func (c *Controller) ListCollection(ctx echo.Context) error {
	_, err := server(ctx).ListCollection(ctx.Request().Context(), ctx.Param("collection_id"))
	return c.handleError(ctx, err)
}

// Replace handles PUT /entry/:entry_id.
func (c *Controller) Replace(ctx echo.Context) error {
	_, err := server(ctx).Replace(ctx.Request().Context(), ctx.Param("entry_id"), depositRequest(ctx))
	return c.handleError(ctx, err)
}

// ReplaceContent handles PUT /entry/:entry_id/content.
func (c *Controller) ReplaceContent(ctx echo.Context) error {
	return c.Replace(ctx)
}

// DepositExisting handles POST /entry/:entry_id.
func (c *Controller) DepositExisting(ctx echo.Context) error {
	_, err := server(ctx).DepositExisting(ctx.Request().Context(), ctx.Param("entry_id"), depositRequest(ctx))
	return c.handleError(ctx, err)
}

// AddContent handles POST /entry/:entry_id/content.
func (c *Controller) AddContent(ctx echo.Context) error {
	_, err := server(ctx).AddContent(ctx.Request().Context(), ctx.Param("entry_id"), depositRequest(ctx))
	return c.handleError(ctx, err)
}

// DeleteContainer handles DELETE /entry/:entry_id.
func (c *Controller) DeleteContainer(ctx echo.Context) error {
	return c.handleError(ctx, server(ctx).DeleteContainer(ctx.Request().Context(), ctx.Param("entry_id")))
}

// DeleteContent handles DELETE /entry/:entry_id/content.
func (c *Controller) DeleteContent(ctx echo.Context) error {
	return c.handleError(ctx, server(ctx).DeleteContent(ctx.Request().Context(), ctx.Param("entry_id")))
}

// handleError writes the response for a failed operation: an error document
// for SWORD errors, the bare status otherwise.
func (c *Controller) handleError(ctx echo.Context, err error) error {
	status := sword.StatusCode(err)

	var swordErr *sword.SwordError
	if errors.As(err, &swordErr) && !swordErr.Empty {
		doc, docErr := server(ctx).ErrorDocument(swordErr)
		if docErr == nil {
			return ctx.Blob(status, mimeErrorDocument, doc)
		}
		err, status = docErr, http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		reported := errors.New(err).
			Component("api").
			Category(errors.CategoryIntegration).
			Priority(errors.PriorityHigh).
			Context("method", ctx.Request().Method).
			Context("route", ctx.Path()).
			Build()
		c.log.WithContext(ctx.Request().Context()).Error("SWORD request failed",
			logger.Error(reported),
			logger.String("route", ctx.Path()))
	}

	return ctx.NoContent(status)
}
