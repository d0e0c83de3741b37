package services

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/models"
	"github.com/andrefranchin/treine-me-api/internal/repository"
	"github.com/andrefranchin/treine-me-api/internal/storage"
)

const (
	thumbMaxWidth  = 640
	thumbMaxHeight = 360
	thumbQuality   = 85
)

// ConteudoProcessor generates thumbnails for uploaded image conteudos. It
// runs in the image worker, off the request path.
type ConteudoProcessor struct {
	conteudos     *repository.ConteudoRepository
	storageDriver storage.Driver
}

func NewConteudoProcessor(conteudos *repository.ConteudoRepository, storageDriver storage.Driver) *ConteudoProcessor {
	return &ConteudoProcessor{
		conteudos:     conteudos,
		storageDriver: storageDriver,
	}
}

// Process resizes one pending image conteudo into a thumbnail variant and
// marks the record ready. Failures mark it failed; the original stays
// served either way.
func (p *ConteudoProcessor) Process(ctx context.Context, conteudoID uuid.UUID) error {
	conteudo, err := p.conteudos.GetByID(ctx, conteudoID)
	if err != nil {
		return fmt.Errorf("failed to get conteudo: %w", err)
	}

	if conteudo.Status != models.ConteudoPending {
		return fmt.Errorf("conteudo not eligible for processing: status=%s", conteudo.Status)
	}
	if !strings.HasPrefix(conteudo.MimeType, "image/") {
		return fmt.Errorf("conteudo %s is not an image: %s", conteudoID, conteudo.MimeType)
	}

	if err := p.conteudos.UpdateStatus(ctx, conteudoID, models.ConteudoProcessing); err != nil {
		return fmt.Errorf("failed to update status to processing: %w", err)
	}

	reader, err := p.storageDriver.Reader(ctx, conteudo.StoragePath)
	if err != nil {
		p.fail(ctx, conteudoID)
		return fmt.Errorf("failed to read original: %w", err)
	}
	defer reader.Close()

	src, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		p.fail(ctx, conteudoID)
		return fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(src, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbQuality}); err != nil {
		p.fail(ctx, conteudoID)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	path := thumbPath(conteudo.StoragePath)
	_, thumbURL, err := p.storageDriver.Upload(ctx, &buf, path)
	if err != nil {
		p.fail(ctx, conteudoID)
		return fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	if err := p.conteudos.SetThumbURL(ctx, conteudoID, thumbURL); err != nil {
		p.fail(ctx, conteudoID)
		return fmt.Errorf("failed to record thumbnail: %w", err)
	}
	if err := p.conteudos.UpdateStatus(ctx, conteudoID, models.ConteudoReady); err != nil {
		return fmt.Errorf("failed to update status to ready: %w", err)
	}

	return nil
}

func (p *ConteudoProcessor) fail(ctx context.Context, conteudoID uuid.UUID) {
	_ = p.conteudos.UpdateStatus(ctx, conteudoID, models.ConteudoFailed)
}
