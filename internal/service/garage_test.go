package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carscene-backend/internal/domain"
)

type MockCarRepo struct{ mock.Mock }

func (m *MockCarRepo) Create(ctx context.Context, car *domain.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *MockCarRepo) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepo) Update(ctx context.Context, car *domain.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *MockCarRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCarRepo) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Car, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarRepo) Gallery(ctx context.Context, viewerID, page, pageSize int32) (*domain.GalleryPage, error) {
	args := m.Called(ctx, viewerID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GalleryPage), args.Error(1)
}

func (m *MockCarRepo) ToggleLike(ctx context.Context, carID, userID int32) (bool, int32, error) {
	args := m.Called(ctx, carID, userID)
	return args.Bool(0), args.Get(1).(int32), args.Error(2)
}

func (m *MockCarRepo) CreateImage(ctx context.Context, image *domain.CarImage) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockCarRepo) GetImageByID(ctx context.Context, imageID int32) (*domain.CarImage, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarImage), args.Error(1)
}

func (m *MockCarRepo) GetImages(ctx context.Context, carID int32) ([]domain.CarImage, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarImage), args.Error(1)
}

func (m *MockCarRepo) ConfirmImage(ctx context.Context, imageID, carID int32, fileSize int64) error {
	return m.Called(ctx, imageID, carID, fileSize).Error(0)
}

func (m *MockCarRepo) DeleteImage(ctx context.Context, imageID int32) error {
	return m.Called(ctx, imageID).Error(0)
}

func (m *MockCarRepo) SetPrimaryImage(ctx context.Context, carID, imageID int32) error {
	return m.Called(ctx, carID, imageID).Error(0)
}

func (m *MockCarRepo) DeleteExpiredPendingImages(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) SaveFile(key string, reader io.Reader) error {
	return m.Called(key, reader).Error(0)
}

func (m *MockStorage) ReadFile(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func newTestGarageService() (GarageService, *MockCarRepo, *MockStorage) {
	cars := new(MockCarRepo)
	store := new(MockStorage)
	return NewGarageService(cars, store, noopInvalidator{}), cars, store
}

func TestGarageService_AddCar(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()
		cars.On("Create", ctx, mock.Anything).Return(nil)

		car := &domain.Car{OwnerID: 7, Make: "Nissan", Model: "Skyline", Year: 1999}
		assert.NoError(t, svc.AddCar(ctx, car))
	})

	t.Run("MissingMake", func(t *testing.T) {
		svc, _, _ := newTestGarageService()
		err := svc.AddCar(ctx, &domain.Car{OwnerID: 7, Model: "Skyline", Year: 1999})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("YearOutOfRange", func(t *testing.T) {
		svc, _, _ := newTestGarageService()
		err := svc.AddCar(ctx, &domain.Car{OwnerID: 7, Make: "Nissan", Model: "Skyline", Year: 1850})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGarageService_RequestImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, cars, store := newTestGarageService()
		carID := int32(3)

		cars.On("GetByID", ctx, carID).Return(&domain.Car{ID: 3, OwnerID: 7}, nil)
		cars.On("CreateImage", ctx, mock.MatchedBy(func(img *domain.CarImage) bool {
			return img.UploaderID == 7 &&
				img.Status == domain.CarImageStatusPending &&
				strings.HasPrefix(img.StorageKey, "cars/7/") &&
				strings.HasSuffix(img.StorageKey, ".png")
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.CarImage).ID = 11
		})
		store.On("GeneratePresignedUploadURL", ctx, mock.Anything, "image/png", uploadURLExpiry).
			Return("http://storage/upload?sig=abc", nil)

		ticket, err := svc.RequestImageUpload(ctx, 7, &carID, "front.png", "image/png", false)
		assert.NoError(t, err)
		assert.Equal(t, int32(11), ticket.ImageID)
		assert.Equal(t, "http://storage/upload?sig=abc", ticket.UploadURL)
		assert.Equal(t, int64(900), ticket.ExpiresIn)
	})

	t.Run("UnsupportedContentType", func(t *testing.T) {
		svc, _, _ := newTestGarageService()
		_, err := svc.RequestImageUpload(ctx, 7, nil, "movie.mp4", "video/mp4", false)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("NotYourCar", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()
		carID := int32(3)
		cars.On("GetByID", ctx, carID).Return(&domain.Car{ID: 3, OwnerID: 99}, nil)

		_, err := svc.RequestImageUpload(ctx, 7, &carID, "front.png", "image/png", false)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestGarageService_ConfirmImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, cars, store := newTestGarageService()

		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, UploaderID: 7, StorageKey: "cars/7/abc.png",
			Status: domain.CarImageStatusPending,
		}, nil)
		cars.On("GetByID", ctx, int32(3)).Return(&domain.Car{ID: 3, OwnerID: 7, PrimaryImageURL: "existing"}, nil)
		store.On("FileExists", ctx, "cars/7/abc.png").Return(true, int64(2048), nil)
		cars.On("ConfirmImage", ctx, int32(11), int32(3), int64(2048)).Return(nil)

		img, err := svc.ConfirmImageUpload(ctx, 7, 11, 3)
		assert.NoError(t, err)
		assert.Equal(t, domain.CarImageStatusConfirmed, img.Status)
		assert.Equal(t, int64(2048), img.FileSize)
		cars.AssertNotCalled(t, "SetPrimaryImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NothingUploaded", func(t *testing.T) {
		svc, cars, store := newTestGarageService()

		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, UploaderID: 7, StorageKey: "cars/7/abc.png",
			Status: domain.CarImageStatusPending,
		}, nil)
		cars.On("GetByID", ctx, int32(3)).Return(&domain.Car{ID: 3, OwnerID: 7}, nil)
		store.On("FileExists", ctx, "cars/7/abc.png").Return(false, int64(0), nil)

		_, err := svc.ConfirmImageUpload(ctx, 7, 11, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)
		cars.AssertNotCalled(t, "ConfirmImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotTheUploader", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()

		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, UploaderID: 99, Status: domain.CarImageStatusPending,
		}, nil)

		_, err := svc.ConfirmImageUpload(ctx, 7, 11, 3)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("AlreadyConfirmed", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()

		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, UploaderID: 7, Status: domain.CarImageStatusConfirmed,
		}, nil)

		_, err := svc.ConfirmImageUpload(ctx, 7, 11, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGarageService_ImageDownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmedImage", func(t *testing.T) {
		svc, cars, store := newTestGarageService()
		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, StorageKey: "cars/7/abc.png", Status: domain.CarImageStatusConfirmed,
		}, nil)
		store.On("GeneratePresignedDownloadURL", ctx, "cars/7/abc.png", downloadURLExpiry).
			Return("http://storage/download?sig=xyz", nil)

		url, err := svc.ImageDownloadURL(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, "http://storage/download?sig=xyz", url)
	})

	t.Run("PendingImageHidden", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()
		cars.On("GetImageByID", ctx, int32(11)).Return(&domain.CarImage{
			ID: 11, Status: domain.CarImageStatusPending,
		}, nil)

		_, err := svc.ImageDownloadURL(ctx, 11)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGarageService_ToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()
		cars.On("GetByID", ctx, int32(3)).Return(&domain.Car{ID: 3, OwnerID: 9}, nil)
		cars.On("ToggleLike", ctx, int32(3), int32(7)).Return(true, int32(5), nil)

		liked, count, err := svc.ToggleLike(ctx, 7, 3)
		assert.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int32(5), count)
	})

	t.Run("MissingCar", func(t *testing.T) {
		svc, cars, _ := newTestGarageService()
		cars.On("GetByID", ctx, int32(99)).Return(nil, sql.ErrNoRows)

		_, _, err := svc.ToggleLike(ctx, 7, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
