// Package http provides HTTP handlers for uploading, downloading and listing
// encrypted file transfers.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
	apperrors "github.com/allisson/filedrop/internal/errors"
	"github.com/allisson/filedrop/internal/httputil"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
	"github.com/allisson/filedrop/internal/transfer/http/dto"
	transferUseCase "github.com/allisson/filedrop/internal/transfer/usecase"
	appValidation "github.com/allisson/filedrop/internal/validation"
)

const (
	fileFormField = "file"

	// multipartMemory is how much of a multipart body is buffered in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20

	defaultMimeType = "application/octet-stream"

	// maxMimeTypeLength matches the files.mime_type column.
	maxMimeTypeLength = 255
)

// errUploadTooLarge is returned when the upload body exceeds MaxUploadSize.
var errUploadTooLarge = apperrors.Wrap(apperrors.ErrTooLarge, "upload exceeds size limit")

// Options configures a TransferHandler.
type Options struct {
	// MaxUploadSize caps the whole multipart body in bytes.
	MaxUploadSize int64
	// HideTransferExistence reports downloads by non-receivers as not found
	// instead of forbidden.
	HideTransferExistence bool
}

// TransferHandler handles HTTP requests for file transfers.
type TransferHandler struct {
	transferUseCase transferUseCase.TransferUseCase
	opts            Options
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(
	transferUseCase transferUseCase.TransferUseCase,
	opts Options,
	logger *slog.Logger,
) *TransferHandler {
	return &TransferHandler{
		transferUseCase: transferUseCase,
		opts:            opts,
		logger:          logger,
	}
}

// UploadHandler encrypts and stores a file for a recipient.
// POST /v1/files/upload - multipart form with file, recipient_email and encryption_key.
// Returns 201 Created with the transfer id.
func (h *TransferHandler) UploadHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingToken, h.logger)
		return
	}

	if h.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		h.handleBodyError(c, err)
		return
	}
	defer func() { _ = c.Request.MultipartForm.RemoveAll() }()

	var req dto.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	fileHeader, err := c.FormFile(fileFormField)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("file is required"), h.logger)
		return
	}
	req.FileName = fileHeader.Filename

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, appValidation.WrapValidationError(err), h.logger)
		return
	}

	content, err := readFormFile(fileHeader)
	if err != nil {
		h.handleBodyError(c, err)
		return
	}
	defer cryptoDomain.Zero(content)

	mimeType := resolveMimeType(fileHeader.Header.Get("Content-Type"), content)

	transfer, err := h.transferUseCase.Upload(
		c.Request.Context(),
		req.ToUploadInput(principal.UserID, mimeType, content),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("file uploaded",
		slog.String("transfer_id", transfer.ID.String()),
		slog.String("sender_id", principal.UserID.String()),
		slog.Int("size", len(content)),
	)
	c.JSON(http.StatusCreated, dto.MapTransferToUploadResponse(transfer))
}

// DownloadHandler decrypts a transfer for its receiver.
// POST /v1/files/download/:transfer_id - JSON body with decryption_key.
// Returns 200 OK with the plaintext as an attachment.
func (h *TransferHandler) DownloadHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingToken, h.logger)
		return
	}

	transferID, err := uuid.Parse(c.Param("transfer_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid transfer id format"), h.logger)
		return
	}

	var req dto.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, appValidation.WrapValidationError(err), h.logger)
		return
	}

	file, err := h.transferUseCase.Download(c.Request.Context(), transferID, req.DecryptionKey, principal.UserID)
	if err != nil {
		if h.opts.HideTransferExistence && errors.Is(err, transferDomain.ErrAccessDenied) {
			err = transferDomain.ErrTransferNotFound
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(file.Content)

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	c.Header("Content-Disposition", httputil.AttachmentDisposition(file.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mimeType, file.Content)
}

// ListHandler lists the caller's sent and received transfers.
// GET /v1/files?offset=0&limit=50
// Returns 200 OK with both directions, newest first.
func (h *TransferHandler) ListHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingToken, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	listing, err := h.transferUseCase.List(c.Request.Context(), principal.UserID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapListingToResponse(listing))
}

// handleBodyError renders an oversized body as 413 and anything else as 400.
func (h *TransferHandler) handleBodyError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.HandleErrorGin(c, errUploadTooLarge, h.logger)
		return
	}
	httputil.HandleBadRequestGin(c, fmt.Errorf("invalid multipart body"), h.logger)
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// resolveMimeType normalizes the part's declared Content-Type. Malformed,
// generic or oversized values fall back to sniffing content. Parameters are
// dropped when they alone push the value past the column limit.
func resolveMimeType(declared string, content []byte) string {
	mediaType, params, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == defaultMimeType {
		return mimetype.Detect(content).String()
	}

	if formatted := mime.FormatMediaType(mediaType, params); formatted != "" && len(formatted) <= maxMimeTypeLength {
		return formatted
	}
	if len(mediaType) <= maxMimeTypeLength {
		return mediaType
	}
	return mimetype.Detect(content).String()
}
