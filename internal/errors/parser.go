package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and transport errors into user-facing
// code/message pairs. Sensitive details are never forwarded; the message
// gives the user enough to act on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM base errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint errors

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 2-4. Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		if strings.Contains(errStrLower, "rating") {
			return ErrorInfo{
				Code:    ReviewInvalidRating,
				Message: "Rating must be between 1 and 5",
			}
		}
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "Invalid input",
		}
	}

	// 3. Network/connection errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "External service unavailable. Please try again later",
		}
	}

	// 4. Default internal server error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email is already registered",
		}
	}

	if strings.Contains(errLower, "slug") {
		return ErrorInfo{
			Code:    SlugAlreadyExists,
			Message: "This slug is already in use",
		}
	}

	if strings.Contains(errLower, "sku") {
		return ErrorInfo{
			Code:    ProductSKUExists,
			Message: "This SKU is already in use",
		}
	}

	if strings.Contains(errLower, "reviews") && strings.Contains(errLower, "user_id") {
		return ErrorInfo{
			Code:    ReviewAlreadyExists,
			Message: "You have already reviewed this product",
		}
	}

	if strings.Contains(errLower, "wishlist") {
		return ErrorInfo{
			Code:    WishlistItemExists,
			Message: "This product is already in your wishlist",
		}
	}

	if strings.Contains(errLower, "settings") && strings.Contains(errLower, "key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This setting already exists",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// Deleting a row still referenced elsewhere
	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		if strings.Contains(context, "brand") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "This brand still has products and cannot be deleted",
			}
		}
		if strings.Contains(context, "category") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "This category still has products and cannot be deleted",
			}
		}
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This record is referenced by other data and cannot be deleted",
		}
	}

	// Referencing a row that does not exist
	if strings.Contains(errLower, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "Product does not exist"}
	}
	if strings.Contains(errLower, "brand_id") {
		return ErrorInfo{Code: BrandNotFound, Message: "Brand does not exist"}
	}
	if strings.Contains(errLower, "category_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "Category does not exist"}
	}
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "User does not exist"}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced record not found",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "brand"):
		return "Brand not found"
	case strings.Contains(contextLower, "category"):
		return "Category not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "review"):
		return "Review not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "setting"):
		return "Setting not found"
	}

	return "Requested record not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Creation failed. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Update failed. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Deletion failed. Please try again later"
	case strings.Contains(contextLower, "checkout"):
		return "Checkout failed. Your cart has been kept"
	}

	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses the error and writes the standard error payload.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
