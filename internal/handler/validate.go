package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"go-crud-api/pkg/apierror"
)

const maxPayloadBytes = 1 << 20

const (
	nonBlank  = `{"type": "string", "pattern": "\\S"}`
	anyString = `{"type": "string"}`
)

var (
	bookCreateSchema = mustSchema(bookSchema(nonBlank, []string{"id", "title", "author", "publish_year"}))
	carCreateSchema  = mustSchema(carSchema(nonBlank, []string{"id", "name"}))

	// On PUT the id comes from the path, so a body id is not checked.
	bookUpdateSchema = mustSchema(bookSchema(anyString, []string{"title", "author", "publish_year"}))
	carUpdateSchema  = mustSchema(carSchema(anyString, []string{"name"}))
)

func bookSchema(id string, required []string) string {
	return fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"id": %s,
			"title": %s,
			"author": %s,
			"publish_year": {"type": "integer", "minimum": 0}
		},
		"required": %s
	}`, id, nonBlank, nonBlank, mustJSON(required))
}

func carSchema(id string, required []string) string {
	return fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"id": %s,
			"name": %s
		},
		"required": %s
	}`, id, nonBlank, mustJSON(required))
}

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid payload schema: %v", err))
	}
	return schema
}

func mustJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return string(encoded)
}

// decodeValidated checks the request body against schema before decoding it into dst.
func decodeValidated(r *http.Request, schema *gojsonschema.Schema, dst any) error {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return apierror.BadRequest("could not read request body", "")
	}
	if !json.Valid(body) {
		return apierror.BadRequest("invalid JSON body", "")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, problem := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", problem.Field(), problem.Description()))
		}
		return apierror.New("VALIDATION_FAILED", "request body failed validation", strings.Join(problems, "; "), http.StatusBadRequest)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}
	return nil
}
