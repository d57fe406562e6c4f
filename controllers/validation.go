package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondInvalid writes the 400 for a failed bind: per-field messages
// for validation failures, a generic error for malformed bodies.
func respondInvalid(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, gin.H{"field": fe.Field(), "message": fieldMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Valid email is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

// currentCustomerID parses the identity the auth middleware verified
// into its canonical ObjectID form. All ownership comparisons happen on
// ObjectIDs, never on raw strings.
func currentCustomerID(c *gin.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.GetString("userId"))
}
