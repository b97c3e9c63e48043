//go:build unit

package api_test

import (
	"net/http"

	"voucher-engine/internal/domain/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const customerToken = "customer-token"
const adminToken = "admin-token"

// fakeAuth stands in for RequireAuth: the bearer value picks the role.
func fakeAuth(customerID, adminID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.GetHeader("Authorization") {
		case "Bearer " + customerToken:
			c.Set("user_id", customerID)
			c.Set("user_role", user.RoleCustomer)
		case "Bearer " + adminToken:
			c.Set("user_id", adminID)
			c.Set("user_role", user.RoleAdmin)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Next()
	}
}
