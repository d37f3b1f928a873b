package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"carscene-backend/internal/cache"
	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
	"carscene-backend/internal/storage"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 1 * time.Hour
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type garageService struct {
	cars    repository.CarRepository
	storage storage.StorageInterface
	cache   cache.Invalidator
}

func NewGarageService(cars repository.CarRepository, store storage.StorageInterface, invalidator cache.Invalidator) GarageService {
	return &garageService{cars: cars, storage: store, cache: invalidator}
}

func (s *garageService) AddCar(ctx context.Context, car *domain.Car) error {
	logger.EnterMethod("GarageService.AddCar", "ownerId", car.OwnerID)

	if car.Make == "" || car.Model == "" {
		return fmt.Errorf("%w: make and model are required", domain.ErrValidation)
	}
	if car.Year < 1900 || car.Year > int32(time.Now().Year()+1) {
		return fmt.Errorf("%w: year is out of range", domain.ErrValidation)
	}
	if err := s.cars.Create(ctx, car); err != nil {
		logger.ExitMethodWithError("GarageService.AddCar", err)
		return err
	}
	s.cache.InvalidateTags(ctx, cache.GarageTag(), cache.ProfileTag(car.OwnerID))
	logger.ExitMethod("GarageService.AddCar", "carId", car.ID)
	return nil
}

func (s *garageService) GetCar(ctx context.Context, carID int32) (*domain.Car, []domain.CarImage, error) {
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: car not found", domain.ErrNotFound)
		}
		return nil, nil, err
	}
	images, err := s.cars.GetImages(ctx, carID)
	if err != nil {
		return nil, nil, err
	}
	return car, images, nil
}

func (s *garageService) UpdateCar(ctx context.Context, callerID int32, car *domain.Car) error {
	existing, err := s.cars.GetByID(ctx, car.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: car not found", domain.ErrNotFound)
		}
		return err
	}
	if existing.OwnerID != callerID {
		return fmt.Errorf("%w: you do not own this car", domain.ErrForbidden)
	}
	if car.Make == "" || car.Model == "" {
		return fmt.Errorf("%w: make and model are required", domain.ErrValidation)
	}
	car.OwnerID = existing.OwnerID
	if err := s.cars.Update(ctx, car); err != nil {
		return err
	}
	s.cache.InvalidateTags(ctx, cache.GarageTag(), cache.ProfileTag(callerID))
	return nil
}

func (s *garageService) DeleteCar(ctx context.Context, callerID, carID int32) error {
	existing, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: car not found", domain.ErrNotFound)
		}
		return err
	}
	if existing.OwnerID != callerID {
		return fmt.Errorf("%w: you do not own this car", domain.ErrForbidden)
	}
	if err := s.cars.Delete(ctx, carID); err != nil {
		return err
	}
	s.cache.InvalidateTags(ctx, cache.GarageTag(), cache.ProfileTag(callerID))
	return nil
}

func (s *garageService) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Car, error) {
	return s.cars.ListByOwner(ctx, ownerID)
}

func (s *garageService) Gallery(ctx context.Context, viewerID, page, pageSize int32) (*domain.GalleryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}
	return s.cars.Gallery(ctx, viewerID, page, pageSize)
}

func (s *garageService) ToggleLike(ctx context.Context, callerID, carID int32) (bool, int32, error) {
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, fmt.Errorf("%w: car not found", domain.ErrNotFound)
		}
		return false, 0, err
	}

	liked, likeCount, err := s.cars.ToggleLike(ctx, carID, callerID)
	if err != nil {
		return false, 0, err
	}
	s.cache.InvalidateTags(ctx, cache.GarageTag(), cache.ProfileTag(car.OwnerID))
	return liked, likeCount, nil
}

// RequestImageUpload creates a PENDING image row and hands back a presigned
// upload URL. The row becomes visible only after ConfirmImageUpload; stale
// pending rows are swept by the housekeeping job.
func (s *garageService) RequestImageUpload(ctx context.Context, callerID int32, carID *int32, filename, contentType string, isPrimary bool) (*ImageUploadTicket, error) {
	logger.EnterMethod("GarageService.RequestImageUpload", "callerId", callerID)

	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrValidation, contentType)
	}
	if carID != nil {
		car, err := s.cars.GetByID(ctx, *carID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: car not found", domain.ErrNotFound)
			}
			return nil, err
		}
		if car.OwnerID != callerID {
			return nil, fmt.Errorf("%w: you do not own this car", domain.ErrForbidden)
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("cars/%d/%s%s", callerID, uuid.New().String(), ext)

	img := &domain.CarImage{
		CarID:      carID,
		UploaderID: callerID,
		StorageKey: key,
		IsPrimary:  isPrimary,
		Status:     domain.CarImageStatusPending,
	}
	if err := s.cars.CreateImage(ctx, img); err != nil {
		logger.ExitMethodWithError("GarageService.RequestImageUpload", err)
		return nil, err
	}

	uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload url: %w", err)
	}

	logger.ExitMethod("GarageService.RequestImageUpload", "imageId", img.ID)
	return &ImageUploadTicket{
		ImageID:   img.ID,
		UploadURL: uploadURL,
		ExpiresIn: int64(uploadURLExpiry.Seconds()),
	}, nil
}

// ConfirmImageUpload verifies the bytes actually landed in storage before
// flipping the row to CONFIRMED.
func (s *garageService) ConfirmImageUpload(ctx context.Context, callerID, imageID, carID int32) (*domain.CarImage, error) {
	logger.EnterMethod("GarageService.ConfirmImageUpload", "callerId", callerID, "imageId", imageID, "carId", carID)

	img, err := s.cars.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: image not found", domain.ErrNotFound)
		}
		return nil, err
	}
	if img.UploaderID != callerID {
		return nil, fmt.Errorf("%w: you did not upload this image", domain.ErrForbidden)
	}
	if img.Status != domain.CarImageStatusPending {
		return nil, fmt.Errorf("%w: image is not pending confirmation", domain.ErrValidation)
	}

	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: car not found", domain.ErrNotFound)
		}
		return nil, err
	}
	if car.OwnerID != callerID {
		return nil, fmt.Errorf("%w: you do not own this car", domain.ErrForbidden)
	}

	exists, size, err := s.storage.FileExists(ctx, img.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check uploaded file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: no uploaded file found for this image", domain.ErrValidation)
	}

	if err := s.cars.ConfirmImage(ctx, imageID, carID, size); err != nil {
		logger.ExitMethodWithError("GarageService.ConfirmImageUpload", err)
		return nil, err
	}

	if img.IsPrimary || car.PrimaryImageURL == "" {
		if err := s.cars.SetPrimaryImage(ctx, carID, imageID); err != nil {
			logger.Warn("Could not set primary image", "carId", carID, "imageId", imageID, "error", err)
		} else {
			downloadURL, uerr := s.storage.GeneratePresignedDownloadURL(ctx, img.StorageKey, downloadURLExpiry)
			if uerr == nil {
				car.PrimaryImageURL = downloadURL
				if cerr := s.cars.Update(ctx, car); cerr != nil {
					logger.Warn("Could not update car primary image url", "carId", carID, "error", cerr)
				}
			}
		}
	}

	img.CarID = &carID
	img.Status = domain.CarImageStatusConfirmed
	img.FileSize = size
	s.cache.InvalidateTags(ctx, cache.GarageTag(), cache.ProfileTag(callerID))
	logger.ExitMethod("GarageService.ConfirmImageUpload")
	return img, nil
}

func (s *garageService) ImageDownloadURL(ctx context.Context, imageID int32) (string, error) {
	img, err := s.cars.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: image not found", domain.ErrNotFound)
		}
		return "", err
	}
	if img.Status != domain.CarImageStatusConfirmed {
		return "", fmt.Errorf("%w: image not found", domain.ErrNotFound)
	}
	return s.storage.GeneratePresignedDownloadURL(ctx, img.StorageKey, downloadURLExpiry)
}

func (s *garageService) DeleteImage(ctx context.Context, callerID, imageID int32) error {
	img, err := s.cars.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: image not found", domain.ErrNotFound)
		}
		return err
	}
	if img.UploaderID != callerID {
		return fmt.Errorf("%w: you did not upload this image", domain.ErrForbidden)
	}

	// Storage delete is best-effort; the soft-deleted row is authoritative.
	if err := s.storage.DeleteFile(ctx, img.StorageKey); err != nil {
		logger.Warn("Could not delete stored image", "imageId", imageID, "error", err)
	}
	if err := s.cars.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	s.cache.InvalidateTags(ctx, cache.GarageTag())
	return nil
}
