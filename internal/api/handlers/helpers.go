package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if errs := val.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return false
	}
	return true
}

// decoder converts a raw JSON patch value to the type a schema expects
type decoder func(json.RawMessage) (any, error)

func decodeAs[T any](raw json.RawMessage) (any, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

// readPatch decodes a JSON object into patch.Fields. Keys listed in typed
// are decoded into their concrete type; a value that does not fit is kept
// as generic JSON so the schema check reports it.
func readPatch(w http.ResponseWriter, r *http.Request, typed map[string]decoder) (patch.Fields, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return nil, false
	}

	fields := make(patch.Fields, len(raw))
	for key, value := range raw {
		if dec, ok := typed[key]; ok {
			if v, err := dec(value); err == nil {
				fields[key] = v
				continue
			}
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			utils.WriteError(w, errors.BadRequest("Invalid request body"))
			return nil, false
		}
		fields[key] = v
	}
	return fields, true
}

// writeErr logs unexpected failures and writes err as a JSON error
func writeErr(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	if appErr, ok := errors.As(err); !ok || appErr.StatusCode >= http.StatusInternalServerError {
		log.ErrorWithErr(err, fallback)
	}
	utils.WriteErr(w, err, fallback)
}
