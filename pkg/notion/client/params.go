package client

import (
	"fmt"
	"net/url"
)

func PageSize(count uint64) RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, fmt.Sprintf("page_size=%d", count))
	}
}

func StartCursor(cursor string) RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, "start_cursor="+url.QueryEscape(cursor))
	}
}
