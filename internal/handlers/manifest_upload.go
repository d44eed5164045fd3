package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"manifesthub/internal/excel"
	"manifesthub/internal/exceptions"
	"manifesthub/internal/middleware"
)

const maxUploadBytes = 32 << 20

// UploadManifestHandler parses an uploaded sheet into transient rows for the
// operator to review. Nothing is persisted until the rows are saved; parsed
// rows therefore carry no ID. The per-request row cap comes from app config.
func UploadManifestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("invalid multipart upload: %v", err))
			return
		}
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("missing upload file: %v", err))
			return
		}
		defer file.Close()

		headers, rows, err := excel.ParseManifest(file)
		if err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("could not parse %s: %v", fileHeader.Filename, err))
			return
		}
		if len(rows) == 0 {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message":  "No data rows found in the uploaded sheet",
				"fileName": fileHeader.Filename,
			})
			return
		}
		if limit := maxUploadRows(r); limit > 0 && len(rows) > limit {
			exceptions.RequestErrorHandler(w, fmt.Errorf("sheet has %d rows, the upload limit is %d", len(rows), limit))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fileName": fileHeader.Filename,
			"headers":  headers,
			"rows":     rows,
		})
	})
}

func maxUploadRows(r *http.Request) int {
	appConfig, ok := r.Context().Value(middleware.AppConfigKey).(map[string]interface{})
	if !ok {
		return 0
	}
	limit, ok := appConfig["maxUploadRows"].(int)
	if !ok {
		return 0
	}
	return limit
}
