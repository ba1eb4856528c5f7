package server

import (
	"strconv"
	"strings"

	"github.com/erplora/analytics/pkg/hubctx"
	"github.com/gin-gonic/gin"
)

const hubHeader = "X-Hub-Id"

// HubContext resolves the tenant from the X-Hub-Id header and threads it
// through the request context. Requests without a hub are rejected before
// any handler runs: every analytics read is hub-scoped.
func HubContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(hubHeader))
		if raw == "" {
			AbortWithError(c, ErrMissingHub)
			return
		}
		hubID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || hubID <= 0 {
			AbortWithError(c, ErrMissingHub)
			return
		}

		ctx := hubctx.WithHubID(c.Request.Context(), hubID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
