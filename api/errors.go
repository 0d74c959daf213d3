package api

import (
	"fmt"

	"github.com/squarefactory/cobalt-api/scheduler"
)

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", scheduler.ErrInvalidRequest, fmt.Sprintf(format, args...))
}
