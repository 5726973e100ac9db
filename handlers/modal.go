package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"beacon-admin/metrics"
	"beacon-admin/modal"
)

const maxSubmitMemory = 32 << 20

func modalStatus(err error) (int, string) {
	switch {
	case errors.Is(err, modal.ErrNoItems):
		return http.StatusBadRequest, "No items selected."
	case errors.Is(err, modal.ErrNoData):
		return http.StatusNotFound, "No data found for the selected items."
	case errors.Is(err, modal.ErrInvalidContext),
		errors.Is(err, modal.ErrInvalidType),
		errors.Is(err, modal.ErrInvalidStatus),
		errors.Is(err, modal.ErrInvalidCoordinates):
		return http.StatusBadRequest, "Please check the form and try again."
	case errors.Is(err, modal.ErrUpload):
		return http.StatusBadGateway, "Failed to upload images. Nothing was saved."
	}
	return http.StatusInternalServerError, "Failed to save announcement."
}

func (h *Handler) OpenModal(c *gin.Context) {
	var req modal.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request.", err)
		return
	}
	form, err := h.Modal.Open(c.Request.Context(), req)
	if err != nil {
		status, msg := modalStatus(err)
		if status == http.StatusInternalServerError {
			msg = "Failed to load the selected items."
			log.WithError(err).WithField("context", req.Context).Error("failed to open modal")
		}
		respondError(c, status, msg, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// SubmitModal takes a multipart form: the submission as JSON in "payload"
// and new image files in "images".
func (h *Handler) SubmitModal(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxSubmitMemory); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid form.", err)
		return
	}
	var sub modal.Submission
	if err := binding.JSON.BindBody([]byte(c.Request.FormValue("payload")), &sub); err != nil {
		metrics.ModalSubmitTotal.WithLabelValues(string(sub.Context), "invalid").Inc()
		respondError(c, http.StatusBadRequest, "Please check the form and try again.", err)
		return
	}

	var files []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		files = c.Request.MultipartForm.File["images"]
	}
	uploads, closeAll, err := openUploads(files)
	defer closeAll()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read the attached images.", err)
		return
	}
	sub.Uploads = uploads

	res, err := h.Modal.Submit(c.Request.Context(), sub)
	if err != nil {
		status, msg := modalStatus(err)
		outcome := "error"
		if status == http.StatusBadRequest {
			outcome = "invalid"
		} else {
			log.WithError(err).WithField("context", sub.Context).Error("failed to submit modal")
		}
		metrics.ModalSubmitTotal.WithLabelValues(string(sub.Context), outcome).Inc()
		respondError(c, status, msg, err)
		return
	}

	outcome := "ok"
	if len(res.Warnings) > 0 {
		outcome = "partial"
	}
	metrics.ModalSubmitTotal.WithLabelValues(string(sub.Context), outcome).Inc()
	c.JSON(http.StatusOK, res)
}

func openUploads(files []*multipart.FileHeader) ([]modal.Upload, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	uploads := make([]modal.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, f)
		uploads = append(uploads, modal.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}
