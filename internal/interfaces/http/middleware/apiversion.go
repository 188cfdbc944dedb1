package middleware

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

const (
	HeaderAPIVersion = "X-API-Version"

	// CurrentAPIVersion is the only version served under /api/v1.
	CurrentAPIVersion = 1
)

var vendorMediaType = regexp.MustCompile(`application/vnd\.licensor\.v(\d+)\+json`)

// APIVersion echoes the served version and rejects clients that explicitly
// ask for another one, through X-API-Version or a vendor Accept type.
// Requests that name no version get the current one.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requested, ok := requestedAPIVersion(c); ok && requested != CurrentAPIVersion {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError(
				"unsupported API version",
				fmt.Sprintf("requested v%d, this server speaks v%d", requested, CurrentAPIVersion),
			))
			c.Abort()
			return
		}
		c.Header(HeaderAPIVersion, strconv.Itoa(CurrentAPIVersion))
		c.Next()
	}
}

func requestedAPIVersion(c *gin.Context) (int, bool) {
	if h := c.GetHeader(HeaderAPIVersion); h != "" {
		v, err := strconv.Atoi(h)
		if err != nil {
			return -1, true
		}
		return v, true
	}
	if m := vendorMediaType.FindStringSubmatch(c.GetHeader("Accept")); len(m) == 2 {
		v, _ := strconv.Atoi(m[1])
		return v, true
	}
	return 0, false
}
