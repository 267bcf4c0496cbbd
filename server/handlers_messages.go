package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"sort"
	"strings"

	"discord-archive/database"
	"discord-archive/models"

	"github.com/labstack/echo/v4"
)

// messageFields is the allow-list of keys accepted by PUT /database/messages/:id.
var messageFields = []string{
	"content", "type", "is_pinned", "timestamp", "timestamp_edited", "call_ended", "channel_id",
	"author_id", "reference_message_id", "reactions", "attachments", "embeds", "stickers",
	"mentions", "inline_emojis",
}

var userFields = []string{"nickname", "avatar_url", "color"}

func (s *Server) HandlerListMessages(c echo.Context) error {
	page, size := pageParams(c.QueryParams())
	count, rows, err := s.db.ListMessages(c.Request().Context(), filterFromQuery(c), size, (page-1)*size)
	if err != nil {
		return errorResponse(c, err)
	}

	resp := make(map[string]any)
	resp["count"] = count
	resp["results"] = rows
	resp["next"] = nil
	resp["previous"] = nil
	if int64(page*size) < count {
		resp["next"] = pageLink(c, page+1)
	}
	if page > 1 {
		resp["previous"] = pageLink(c, page-1)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) HandlerMessageDetail(c echo.Context) error {
	detail, err := s.db.GetMessageDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) HandlerUpdateMessage(c echo.Context) error {
	var patch models.MessagePatch
	if err := decodeAllowed(c.Request().Body, messageFields, &patch); err != nil {
		return errorResponse(c, err)
	}

	ctx := c.Request().Context()
	if _, err := s.db.UpdateMessage(ctx, c.Param("id"), patch); err != nil {
		return errorResponse(c, err)
	}
	detail, err := s.db.GetMessageDetail(ctx, c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) HandlerDeleteMessage(c echo.Context) error {
	if err := s.db.DeleteMessage(c.Request().Context(), c.Param("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) HandlerFilterOptions(c echo.Context) error {
	opts, err := s.db.FilterOptions(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

// HandlerExport streams the plain-text transcript used for corpus exports.
func (s *Server) HandlerExport(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="messages.txt"`)
	c.Response().WriteHeader(http.StatusOK)
	n, err := s.db.ExportTranscript(c.Request().Context(), c.Response(), listParam(c.QueryParams(), "exclude_channel"))
	if err != nil {
		// headers are already sent
		log.Printf("Error exporting transcript after %d lines: %v", n, err)
	}
	return nil
}

// decodeAllowed decodes a JSON object into dst after checking every key against allowed.
func decodeAllowed(body io.Reader, allowed []string, dst any) error {
	raw := make(map[string]json.RawMessage)
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return fmt.Errorf("%w: malformed body: %v", database.ErrInvalidField, err)
	}
	var unknown []string
	for key := range raw {
		if !slices.Contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", database.ErrInvalidField, strings.Join(unknown, ", "))
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		return fmt.Errorf("%w: %v", database.ErrInvalidField, err)
	}
	return nil
}
