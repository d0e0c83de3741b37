package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/cache"
	"github.com/andrefranchin/treine-me-api/internal/models"
	"github.com/andrefranchin/treine-me-api/internal/repository"
	"github.com/andrefranchin/treine-me-api/internal/storage"
)

// MaxUploadSize caps a single conteudo or avatar file.
const MaxUploadSize = 100 << 20 // 100 MiB

var allowedExtensions = map[string]bool{
	".pdf": true, ".zip": true,
	".mp4": true, ".mp3": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ProcessConteudoEvent is published to Redis when an uploaded image needs
// thumbnail processing; the image worker consumes it.
type ProcessConteudoEvent struct {
	ConteudoID uuid.UUID `json:"conteudo_id"`
}

// UploadService stores uploaded files and their conteudo records. Ownership
// of the target aula is the handler's responsibility; the service only
// handles the file plumbing.
type UploadService struct {
	conteudos *repository.ConteudoRepository
	storage   storage.Driver
	cache     *cache.Client
}

func NewUploadService(conteudos *repository.ConteudoRepository, storageDriver storage.Driver, cacheClient *cache.Client) *UploadService {
	return &UploadService{
		conteudos: conteudos,
		storage:   storageDriver,
		cache:     cacheClient,
	}
}

func validateUpload(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxUploadSize {
		return "", apperrors.Validation("file", fmt.Sprintf("file exceeds maximum size of %d bytes", MaxUploadSize))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", apperrors.Validation("file", fmt.Sprintf("file type %s not allowed", ext))
	}
	return ext, nil
}

// UploadConteudo stores the file under the owning professor's prefix and
// persists the conteudo record. Image files start pending and are handed to
// the worker; everything else is ready immediately.
func (s *UploadService) UploadConteudo(ctx context.Context, professorID, produtoID, aulaID uuid.UUID, file *multipart.FileHeader) (*models.Conteudo, error) {
	ext, err := validateUpload(file)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	filename := fmt.Sprintf("%s%s", uuid.New(), ext)
	storagePath := fmt.Sprintf("professores/%s/produtos/%s/aulas/%s/%s",
		professorID, produtoID, aulaID, filename)

	finalPath, publicURL, err := s.storage.Upload(ctx, src, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	status := models.ConteudoReady
	if imageExtensions[ext] {
		status = models.ConteudoPending
	}

	conteudo, err := s.conteudos.Create(ctx, &repository.CreateConteudoParams{
		AulaID:           aulaID,
		Filename:         filename,
		OriginalFilename: file.Filename,
		MimeType:         mimeTypeOf(ext),
		FileSize:         file.Size,
		StoragePath:      finalPath,
		PublicURL:        publicURL,
		Status:           status,
	})
	if err != nil {
		// Cleanup: the record failed, don't strand the file.
		_ = s.storage.Delete(ctx, finalPath)
		return nil, err
	}

	if status == models.ConteudoPending && s.cache != nil {
		event, _ := json.Marshal(ProcessConteudoEvent{ConteudoID: conteudo.ID})
		if err := s.cache.Publish(ctx, cache.ProcessChannel, event); err != nil {
			log.Printf("failed to publish process event for conteudo %s: %v", conteudo.ID, err)
		}
	}

	return conteudo, nil
}

// DeleteConteudo removes the record and its files from storage.
func (s *UploadService) DeleteConteudo(ctx context.Context, aulaID, id uuid.UUID) error {
	conteudo, err := s.conteudos.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.conteudos.Delete(ctx, aulaID, id); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, conteudo.StoragePath); err != nil {
		log.Printf("failed to delete file %s from storage: %v", conteudo.StoragePath, err)
	}
	if conteudo.ThumbURL != nil {
		_ = s.storage.Delete(ctx, thumbPath(conteudo.StoragePath))
	}

	return nil
}

// UploadAvatar stores a profile image and returns its public URL.
func (s *UploadService) UploadAvatar(ctx context.Context, role string, ownerID uuid.UUID, file *multipart.FileHeader) (string, error) {
	ext, err := validateUpload(file)
	if err != nil {
		return "", err
	}
	if !imageExtensions[ext] {
		return "", apperrors.Validation("file", "avatar must be an image")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	storagePath := fmt.Sprintf("avatars/%s/%s/%s%s", role, ownerID, uuid.New(), ext)
	_, publicURL, err := s.storage.Upload(ctx, src, storagePath)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return publicURL, nil
}

// UploadCover stores a course cover image and returns its public URL.
func (s *UploadService) UploadCover(ctx context.Context, professorID, produtoID uuid.UUID, file *multipart.FileHeader) (string, error) {
	ext, err := validateUpload(file)
	if err != nil {
		return "", err
	}
	if !imageExtensions[ext] {
		return "", apperrors.Validation("file", "cover must be an image")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	storagePath := fmt.Sprintf("professores/%s/produtos/%s/cover/%s%s",
		professorID, produtoID, uuid.New(), ext)
	_, publicURL, err := s.storage.Upload(ctx, src, storagePath)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}

	return publicURL, nil
}

// thumbPath derives the storage path of a conteudo's thumbnail.
func thumbPath(storagePath string) string {
	ext := filepath.Ext(storagePath)
	return strings.TrimSuffix(storagePath, ext) + "_thumb.jpg"
}

func mimeTypeOf(ext string) string {
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".pdf":  "application/pdf",
		".zip":  "application/zip",
		".mp4":  "video/mp4",
		".mp3":  "audio/mpeg",
	}
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
