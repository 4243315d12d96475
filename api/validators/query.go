package validators

import (
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
)

// ParseQueryJSON decodes a JSON-encoded query parameter into dest. A missing
// parameter leaves dest untouched.
func ParseQueryJSON(r *http.Request, key string, dest any) error {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "query parameter must be valid JSON").WithDetails(map[string]any{"field": key})
	}
	return nil
}
