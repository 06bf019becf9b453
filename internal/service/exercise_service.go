package service

import (
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"coachly/fitness-coach/internal/storage"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("library exercise not found")
	ErrUnsupportedMedia = errors.New("unsupported media content type")
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrDownloadURLError = errors.New("failed to generate download URL")
	ErrMediaKeyMismatch = errors.New("object key does not belong to this exercise")
)

// MediaUploadTicket carries the presigned URL plus the object key the client
// must report back on confirm.
type MediaUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// MediaURLs holds temporary download URLs for an exercise's media.
type MediaURLs struct {
	VideoURL string `json:"videoUrl,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// mediaExtensions maps accepted upload content types to object key extensions.
var mediaExtensions = map[string]string{
	"video/mp4":  "mp4",
	"video/webm": "webm",
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// --- Service Interface ---
type ExerciseService interface {
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error)
	// RequestMediaUpload presigns a direct-to-storage upload for an
	// exercise's demo video or image.
	RequestMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadTicket, error)
	// ConfirmMediaUpload records the uploaded object key on the exercise.
	ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey, contentType string) error
	// GetMediaURLs presigns download URLs for whichever media keys the
	// exercise has.
	GetMediaURLs(ctx context.Context, exerciseID primitive.ObjectID) (*MediaURLs, error)
}

// --- Service Implementation ---

type exerciseService struct {
	libraryRepo repository.ExerciseLibraryRepository
	fileStorage storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(libraryRepo repository.ExerciseLibraryRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		libraryRepo: libraryRepo,
		fileStorage: fileStorage,
	}
}

func (s *exerciseService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	exercise, err := s.libraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) RequestMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadTicket, error) {
	ext, ok := mediaExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedMedia
	}
	if _, err := s.GetExercise(ctx, exerciseID); err != nil {
		return nil, err
	}

	objectKey := storage.ExerciseMediaKey(exerciseID.Hex(), ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &MediaUploadTicket{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

func (s *exerciseService) ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey, contentType string) error {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return err
	}
	// The key must be one this exercise's upload ticket produced.
	if !strings.HasPrefix(objectKey, "exercises/"+exerciseID.Hex()+"/") {
		return ErrMediaKeyMismatch
	}

	videoKey, imageKey := exercise.VideoKey, exercise.ImageKey
	if strings.HasPrefix(contentType, "video/") {
		videoKey = objectKey
	} else {
		imageKey = objectKey
	}
	return s.libraryRepo.SetMediaKeys(ctx, exerciseID, videoKey, imageKey)
}

func (s *exerciseService) GetMediaURLs(ctx context.Context, exerciseID primitive.ObjectID) (*MediaURLs, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	urls := &MediaURLs{}
	if exercise.VideoKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, ErrDownloadURLError
		}
		urls.VideoURL = url
	}
	if exercise.ImageKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.ImageKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, ErrDownloadURLError
		}
		urls.ImageURL = url
	}
	return urls, nil
}
