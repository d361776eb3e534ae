package dto

import "reviewhub/internal/microservices/http-api/apperr"

// invalid turns ozzo-validation output into an apperr validation error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Validation("%s", err.Error())
}
