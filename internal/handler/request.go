package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
)

const maxJSONBody = 1 << 20

// decodeJSON reads the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.BadRequest("Request body is too large")
		case errors.Is(err, io.EOF):
			return domain.BadRequest("Request body is empty")
		default:
			return domain.BadRequest("Invalid request body")
		}
	}
	return nil
}

// decodePayload reads a JSON object for the generic create and update paths.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	payload := map[string]interface{}{}
	if err := decodeJSON(w, r, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// readUpload reads one multipart file. The content type is sniffed from the
// data, not taken from the client.
func readUpload(r *http.Request, field string, maxBytes int64) (usecase.FileUpload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return usecase.FileUpload{}, domain.BadRequest("File is too large")
		}
		return usecase.FileUpload{}, domain.BadRequest("Invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return usecase.FileUpload{}, domain.BadRequest("Please upload a file in the " + field + " field")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return usecase.FileUpload{}, domain.Internal(err)
	}
	if int64(len(data)) > maxBytes {
		return usecase.FileUpload{}, domain.BadRequest("File is too large")
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return usecase.FileUpload{Name: header.Filename, ContentType: contentType, Data: data}, nil
}
