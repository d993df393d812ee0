package models

func ParseProcessingKind(s string) (ProcessingKind, bool) {
	switch k := ProcessingKind(s); k {
	case MediaProcessing, SubtitleProcessing:
		return k, true
	}
	return "", false
}

type StartUploadInput struct {
	ContentLength int64  `json:"contentLength" validate:"required,gt=0"`
	ContentType   string `json:"contentType" validate:"required,lte=255"`
	Checksum      string `json:"checksum" validate:"omitempty,lte=128"`
}

// UploadSession tells the client where to send bytes and from which offset to resume.
type UploadSession struct {
	StorageFilename string `json:"storageFilename"`
	SessionURL      string `json:"sessionUrl"`
	ByteOffset      int64  `json:"byteOffset"`
	ContentLength   int64  `json:"contentLength"`
}
