package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

const imagesField = "images"

// formFields holds request values by key, whatever the body encoding.
// JSON bodies keep non-string values as their raw JSON text.
type formFields map[string][]string

// readForm collects fields and uploaded images from a multipart, urlencoded or JSON body.
func readForm(c *fiber.Ctx, maxFiles int) (formFields, []*multipart.FileHeader, error) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid multipart body", nil)
		}
		files := form.File[imagesField]
		if maxFiles > 0 && len(files) > maxFiles {
			return nil, nil, apperrors.NewValidationError("too many images",
				map[string]any{"images": "at most " + strconv.Itoa(maxFiles) + " files"})
		}
		return formFields(form.Value), files, nil
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		fields, err := jsonFields(c.Body())
		return fields, nil, err
	default:
		fields := formFields{}
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			fields[string(key)] = append(fields[string(key)], string(value))
		})
		return fields, nil, nil
	}
}

func jsonFields(body []byte) (formFields, error) {
	fields := formFields{}
	if len(body) == 0 {
		return fields, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewValidationError("invalid JSON body", nil)
	}
	for key, value := range raw {
		if string(value) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			fields[key] = []string{s}
			continue
		}
		fields[key] = []string{string(value)}
	}
	return fields, nil
}

func (f formFields) str(key string) string {
	if values := f[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// strList accepts a JSON array, a single plain value or repeated values.
// It returns nil when the key is absent.
func (f formFields) strList(key string) ([]string, error) {
	values, ok := f[key]
	if !ok {
		return nil, nil
	}
	if len(values) == 1 {
		v := strings.TrimSpace(values[0])
		if v == "" {
			return []string{}, nil
		}
		if strings.HasPrefix(v, "[") {
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				return nil, invalidField(key, "must be a JSON array")
			}
			out := make([]string, 0, len(items))
			for _, item := range items {
				switch x := item.(type) {
				case string:
					out = append(out, x)
				case float64:
					out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
				case nil:
				default:
					return nil, invalidField(key, "must contain strings")
				}
			}
			return out, nil
		}
		return []string{v}, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// idList is strList for numeric ids.
func (f formFields) idList(key string) ([]int64, error) {
	values, err := f.strList(key)
	if err != nil || values == nil {
		return nil, err
	}
	out := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			return nil, invalidField(key, "must contain positive integer ids")
		}
		out = append(out, id)
	}
	return out, nil
}

// decodeJSONField parses a JSON object sent as a string field. Absent keys yield nil.
func decodeJSONField[T any](f formFields, key string) (*T, error) {
	raw := f.str(key)
	if raw == "" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, invalidField(key, "must be a JSON object")
	}
	return &out, nil
}

func invalidField(key, reason string) error {
	return apperrors.NewValidationError("invalid field "+key, map[string]any{key: reason})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id, nil
}
