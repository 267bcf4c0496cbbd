package server

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"discord-archive/database"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
	// maxPage keeps page*page_size within an int.
	maxPage = math.MaxInt / maxPageSize
)

// filterFromQuery composes the message filter from query parameters. Malformed values
// disable the filter they belong to.
func filterFromQuery(c echo.Context) database.MessageFilter {
	q := c.QueryParams()
	return database.MessageFilter{
		Server:          strings.TrimSpace(q.Get("server")),
		Channel:         strings.TrimSpace(q.Get("channel")),
		User:            strings.TrimSpace(q.Get("user")),
		Date:            strings.TrimSpace(q.Get("date")),
		Timezone:        strings.TrimSpace(q.Get("timezone")),
		ExcludeUsers:    listParam(q, "exclude_user", "exclude"),
		ExcludeChannels: listParam(q, "exclude_channel"),
		ExcludeBots:     boolParam(q, "exclude_bots"),
		HasAttachment:   boolParam(q, "has_attachment"),
		HasMention:      boolParam(q, "has_mention"),
		HasEmoji:        boolParam(q, "has_emoji"),
	}
}

// listParam merges repeated and comma separated values of the given keys.
func listParam(q url.Values, keys ...string) []string {
	var out []string
	for _, key := range keys {
		for _, v := range q[key] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func boolParam(q url.Values, key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(q.Get(key)))
	return err == nil && b
}

// pageParams returns the 1-based page and the page size, falling back to defaults.
func pageParams(q url.Values) (page, size int) {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	size, err = strconv.Atoi(q.Get("page_size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// pageLink returns the request URL pointing at another page.
func pageLink(c echo.Context, page int) string {
	req := c.Request()
	u := url.URL{Scheme: c.Scheme(), Host: req.Host, Path: req.URL.Path}
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
