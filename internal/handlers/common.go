package handlers

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/formstamp/formstamp/internal/errors"
)

// userEmailHeader carries the requester's identity. Authentication
// itself lives in front of this service; the header stands in for the
// session identity the ownership checks consume.
const userEmailHeader = "X-User-Email"

func requesterEmail(c *gin.Context) (string, bool) {
	email := c.GetHeader(userEmailHeader)
	if email == "" {
		c.Error(ierr.NewError("missing requester email").
			WithHintf("the %s header is required", userEmailHeader).
			Mark(ierr.ErrValidation))
		return "", false
	}
	return email, true
}
