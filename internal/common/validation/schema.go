// internal/common/validation/schema.go
package validation

import (
	"regexp"
)

// Format helpers shared by the workers. Structural JSON schema
// validation lives in pkg/registry on top of gojsonschema; these cover
// the scalar fields that arrive inside job variables.

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	phonePattern := regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	return phonePattern.MatchString(phone)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}

// ValidateStorageURI validates a gs:// object URI
func ValidateStorageURI(uri string) bool {
	uriPattern := regexp.MustCompile(`^gs://[a-z0-9][a-z0-9._-]*/[^\s]+$`)
	return uriPattern.MatchString(uri)
}
