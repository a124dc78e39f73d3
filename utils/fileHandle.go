package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"innerspark/models/course"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadSize caps module file uploads
const MaxUploadSize = 500 << 20

var allowedMimes = map[string][]string{
	course.ContentVideo: {"video/mp4", "video/webm", "video/quicktime", "video/x-matroska"},
	course.ContentPDF:   {"application/pdf"},
}

// UploadedFile is a validated upload ready for storage
type UploadedFile struct {
	Key      string
	Meta     course.FileMeta
	Reader   io.Reader
	Closer   io.Closer
	MimeType string
}

// OpenUpload sniffs the real content type of an upload and checks it against the module's content type.
// The caller must close the returned file.
func OpenUpload(file *multipart.FileHeader, contentType, prefix string) (*UploadedFile, error) {
	allowed, ok := allowedMimes[contentType]
	if !ok {
		return nil, fmt.Errorf("%s modules do not take file uploads", contentType)
	}
	if file.Size > MaxUploadSize {
		return nil, fmt.Errorf("file is larger than %d MB", MaxUploadSize>>20)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}

	// sniff the header, then stitch it back in front of the rest of the stream
	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		src.Close()
		return nil, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		src.Close()
		return nil, fmt.Errorf("file type %s is not allowed for %s content", mt.String(), contentType)
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(file.Filename))
	}

	return &UploadedFile{
		Key: fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext),
		Meta: course.FileMeta{
			OriginalName: filepath.Base(file.Filename),
			Size:         file.Size,
			MimeType:     mt.String(),
		},
		Reader:   io.MultiReader(bytes.NewReader(head), src),
		Closer:   src,
		MimeType: mt.String(),
	}, nil
}

// DetectImage checks that data is an image the thumbnailer can decode
func DetectImage(data []byte) error {
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), "image/jpeg", "image/png", "image/gif") {
		return fmt.Errorf("unsupported image type %s", mt.String())
	}
	return nil
}
