package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"unimarket/internal/service"
)

// maxUploadBytes bounds one multipart request body.
const maxUploadBytes = 32 << 20 // 32MB

// readImageFile reads a single uploaded image from the named multipart
// field. The content type is sniffed from the file bytes, not trusted
// from the part header.
func readImageFile(r *http.Request, field string) (*service.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form or file too large")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New("no " + field + " file provided")
	}
	defer file.Close()

	return readImagePart(file, header)
}

// readImageFiles reads every uploaded image from the named multipart
// field, in form order. A request without that field yields an empty
// slice, which callers treat as "no image change".
func readImageFiles(r *http.Request, field string) ([]service.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form or file too large")
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	var uploads []service.ImageUpload
	for _, header := range r.MultipartForm.File[field] {
		file, err := header.Open()
		if err != nil {
			return nil, errors.New("could not read uploaded file")
		}
		upload, err := readImagePart(file, header)
		file.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *upload)
	}
	return uploads, nil
}

func readImagePart(file multipart.File, header *multipart.FileHeader) (*service.ImageUpload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
