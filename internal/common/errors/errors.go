// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeLabelingFailed        ErrorCode = "LABELING_FAILED"
	ErrCodeCategorizationFailed  ErrorCode = "CATEGORIZATION_FAILED"
	ErrCodeCategorizationTimeout ErrorCode = "CATEGORIZATION_TIMEOUT"

	ErrCodeInsufficientImages  ErrorCode = "INSUFFICIENT_IMAGES"
	ErrCodeUnknownCategory     ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeInvalidHeroStrategy ErrorCode = "INVALID_HERO_STRATEGY"

	ErrCodeTemplateNotFound         ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateValidationFailed ErrorCode = "TEMPLATE_VALIDATION_FAILED"

	ErrCodeStorageDownloadFailed ErrorCode = "STORAGE_DOWNLOAD_FAILED"
	ErrCodeStorageUploadFailed   ErrorCode = "STORAGE_UPLOAD_FAILED"

	ErrCodeRenderFailed  ErrorCode = "RENDER_FAILED"
	ErrCodeRenderTimeout ErrorCode = "RENDER_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeAuditWriteFailed              ErrorCode = "AUDIT_WRITE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewClassificationFailedError creates a retryable classification pipeline error.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Image classification run failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLabelingFailedError creates a retryable Vision labeling error.
func NewLabelingFailedError(uri string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLabelingFailed,
		Message:   "Vision label detection failed",
		Details:   fmt.Sprintf("uri: %s, error: %s", uri, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCategorizationFailedError creates a retryable categorization error.
func NewCategorizationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCategorizationFailed,
		Message:   "Label-to-category model call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCategorizationTimeoutError creates a retryable categorization timeout error.
func NewCategorizationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCategorizationTimeout,
		Message:   "Label-to-category model timeout",
		Details:   "model call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientImagesError creates a non-retryable infeasibility error.
func NewInsufficientImagesError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientImages,
		Message:   "Not enough classified images for the requested clip count",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownCategoryError creates a non-retryable configuration error.
func NewUnknownCategoryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCategory,
		Message:   "Bucket snapshot contains a category outside the configured model",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidHeroStrategyError creates a non-retryable configuration error.
func NewInvalidHeroStrategyError(strategy string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidHeroStrategy,
		Message:   "Unsupported hero selection strategy",
		Details:   fmt.Sprintf("strategy: %s", strategy),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in registry",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateValidationFailedError creates a non-retryable template validation error.
func NewTemplateValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateValidationFailed,
		Message:   "Template failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageDownloadFailedError creates a retryable storage error.
func NewStorageDownloadFailedError(uri string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageDownloadFailed,
		Message:   "Cloud storage download failed",
		Details:   fmt.Sprintf("uri: %s, error: %s", uri, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUploadFailedError creates a retryable storage error.
func NewStorageUploadFailedError(uri string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUploadFailed,
		Message:   "Cloud storage upload failed",
		Details:   fmt.Sprintf("uri: %s, error: %s", uri, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates a retryable renderer error.
func NewRenderFailedError(template string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Video rendering failed",
		Details:   fmt.Sprintf("template: %s, error: %s", template, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderTimeoutError creates a retryable renderer timeout error.
func NewRenderTimeoutError(template string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderTimeout,
		Message:   "Video rendering timeout",
		Details:   fmt.Sprintf("template: %s", template),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit indexing error.
func NewAuditWriteFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Selection audit document indexing failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeClassificationFailed:          "CLASSIFICATION_FAILED",
	ErrCodeLabelingFailed:                "LABELING_FAILED",
	ErrCodeCategorizationFailed:          "CATEGORIZATION_FAILED",
	ErrCodeCategorizationTimeout:         "CATEGORIZATION_TIMEOUT",
	ErrCodeInsufficientImages:            "INSUFFICIENT_IMAGES",
	ErrCodeUnknownCategory:               "UNKNOWN_CATEGORY",
	ErrCodeInvalidHeroStrategy:           "INVALID_HERO_STRATEGY",
	ErrCodeTemplateNotFound:              "TEMPLATE_NOT_FOUND",
	ErrCodeTemplateValidationFailed:      "TEMPLATE_VALIDATION_FAILED",
	ErrCodeStorageDownloadFailed:         "STORAGE_DOWNLOAD_FAILED",
	ErrCodeStorageUploadFailed:           "STORAGE_UPLOAD_FAILED",
	ErrCodeRenderFailed:                  "RENDER_FAILED",
	ErrCodeRenderTimeout:                 "RENDER_TIMEOUT",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeAuditWriteFailed:              "AUDIT_WRITE_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassificationFailed,
		ErrCodeLabelingFailed,
		ErrCodeCategorizationFailed,
		ErrCodeStorageDownloadFailed,
		ErrCodeStorageUploadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeRenderFailed:
		return 3 // Retryable technical errors

	case ErrCodeCategorizationTimeout,
		ErrCodeRenderTimeout:
		return 1 // One more attempt after a timeout

	default:
		return 0 // Business/configuration errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CLASSIFICATION") || strings.Contains(codeStr, "LABELING") || strings.Contains(codeStr, "CATEGORIZATION"):
		return "CLASSIFICATION"
	case strings.Contains(codeStr, "IMAGES") || strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "HERO"):
		return "SELECTION"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "RENDER"):
		return "RENDER"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "AUDIT"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "GENERAL"
	}
}

// IsStandardError reports whether err carries a StandardError.
func IsStandardError(err error) (*StandardError, bool) {
	stdErr, ok := err.(*StandardError)
	return stdErr, ok
}
