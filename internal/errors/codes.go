package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (CATALOG_) ====================
	ProductNotFound       = "CATALOG_PRODUCT_NOT_FOUND"
	VariantNotFound       = "CATALOG_VARIANT_NOT_FOUND"
	BrandNotFound         = "CATALOG_BRAND_NOT_FOUND"
	CategoryNotFound      = "CATALOG_CATEGORY_NOT_FOUND"
	SlugAlreadyExists     = "CATALOG_SLUG_EXISTS"
	ProductSKUExists      = "CATALOG_SKU_EXISTS"
	ProductOutOfStock     = "CATALOG_OUT_OF_STOCK"
	InsufficientStock     = "CATALOG_INSUFFICIENT_STOCK"

	// ==================== Cart (CART_) ====================
	CartNotFound     = "CART_NOT_FOUND"
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Checkout / orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"
	CheckoutMissingField   = "CHECKOUT_MISSING_FIELD"
	CheckoutFailed         = "CHECKOUT_FAILED"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"

	// ==================== Wishlist (WISHLIST_) ====================
	WishlistItemExists   = "WISHLIST_ITEM_EXISTS"
	WishlistItemNotFound = "WISHLIST_ITEM_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Settings (SETTING_) ====================
	SettingNotFound = "SETTING_NOT_FOUND"
	SettingReadOnly = "SETTING_READ_ONLY"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
