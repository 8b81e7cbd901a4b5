package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"slotcast/internal/api"
)

// sniffLen is how many leading bytes http.DetectContentType inspects.
const sniffLen = 512

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.images.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, api.ImagesResponse{Images: images})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			s.writeServiceError(w, r, uploadTooLarge())
		case errors.Is(err, http.ErrMissingFile):
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode(fmt.Errorf("no file uploaded"), ErrCodeMissingRequired))
		default:
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode(fmt.Errorf("invalid multipart request: %w", err), ErrCodeInvalidArgument))
		}
		return
	}
	defer file.Close()

	// The declared Content-Type is client-controlled; sniff the bytes and
	// trust those instead.
	buffered := bufio.NewReaderSize(file, sniffLen)
	mediaType, err := sniffMediaType(buffered, header.Header.Get("Content-Type"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode(err, ErrCodeInvalidImage))
		return
	}

	image, err := s.images.Upload(r.Context(), UploadInput{
		OriginalName: header.Filename,
		MediaType:    mediaType,
		BaseURL:      requestBaseURL(r),
		Content:      buffered,
	})
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeServiceError(w, r, uploadTooLarge())
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusCreated, image)
}

func (s *Server) handleAddImageURL(w http.ResponseWriter, r *http.Request) {
	var req api.ImageURLRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	image, err := s.images.AddURL(r.Context(), req.URL, req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusCreated, image)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.imageIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.images.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "image deleted", nil)
}

func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	f, err := s.uploads.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound,
				notFoundCode(fmt.Errorf("upload %q not found", key), ErrCodeImageNotFound))
			return
		}
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode(fmt.Errorf("invalid upload key"), ErrCodeInvalidArgument))
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(extOf(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, f); err != nil {
		s.log().Debug("serve upload interrupted", "key", key, "error", err)
	}
}

// sniffMediaType detects the content type from the leading bytes, falling
// back to the declared header only when detection is inconclusive.
func sniffMediaType(br *bufio.Reader, declared string) (string, error) {
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read uploaded file: %w", err)
	}
	if len(head) == 0 {
		return "", fmt.Errorf("uploaded file is empty")
	}

	detected := http.DetectContentType(head)
	if detected != "application/octet-stream" {
		return detected, nil
	}
	if declared == "" {
		return detected, nil
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return detected, nil
	}
	return mediaType, nil
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func uploadTooLarge() error {
	return makeAPIError(http.StatusRequestEntityTooLarge, "too_large",
		ErrCodeRequestTooLarge, fmt.Errorf("uploaded file too large"))
}

func extOf(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i:]
	}
	return ""
}
