package grossneterrors

import (
	"fmt"
	"net/http"

	"vn-payroll/internal/shared/apperror"
)

// InvalidRegion is the only failure the calculator itself produces. The
// offending code is carried in the message so batch rows stay diagnosable.
func InvalidRegion(region int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidRegion,
		fmt.Sprintf("Invalid region: %d. Must be 1, 2, 3, or 4.", region),
		http.StatusBadRequest,
	)
}
