package usecase

import (
	"fmt"
	"strings"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/uploads"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
)

type sizeTypePolicy struct {
	kind         models.ProcessingKind
	maxSize      int64
	contentTypes []string
}

func NewMediaPolicy(cfg config.UploadConfig) uploads.KindPolicy {
	return &sizeTypePolicy{kind: models.MediaProcessing, maxSize: cfg.MaxMediaSize, contentTypes: cfg.MediaContentTypes}
}

func NewSubtitlePolicy(cfg config.UploadConfig) uploads.KindPolicy {
	return &sizeTypePolicy{kind: models.SubtitleProcessing, maxSize: cfg.MaxSubtitleSize, contentTypes: cfg.SubtitleContentTypes}
}

func (p *sizeTypePolicy) Kind() models.ProcessingKind {
	return p.kind
}

func (p *sizeTypePolicy) Accept(input *models.StartUploadInput) error {
	if p.maxSize > 0 && input.ContentLength > p.maxSize {
		return httperrors.NewBadRequestError(fmt.Sprintf("%s upload of %d bytes exceeds the %d byte limit", p.kind, input.ContentLength, p.maxSize))
	}
	// parameters such as charset do not matter
	contentType := strings.TrimSpace(strings.SplitN(input.ContentType, ";", 2)[0])
	for _, allowed := range p.contentTypes {
		if strings.EqualFold(allowed, contentType) {
			return nil
		}
	}
	return httperrors.NewBadRequestError(fmt.Sprintf("content type %q is not accepted for %s uploads", input.ContentType, p.kind))
}
