package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/repository"
)

type carRepository struct {
	db DBTX
}

func NewCarRepository(db DBTX) repository.CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (owner_id, make, model, year, description, primary_image_url, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	c.CreatedOn = now.Format(time.RFC3339)
	c.UpdatedOn = c.CreatedOn
	return r.db.QueryRowContext(ctx, query, c.OwnerID, c.Make, c.Model, c.Year, c.Description, c.PrimaryImageURL, now, now).Scan(&c.ID)
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	c := &domain.Car{}
	query := `SELECT id, owner_id, make, model, year, COALESCE(description, ''), COALESCE(primary_image_url, ''), like_count, created_on, updated_on
	          FROM cars WHERE id = $1 AND deleted_on IS NULL`
	var createdOn, updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.Make, &c.Model, &c.Year, &c.Description, &c.PrimaryImageURL, &c.LikeCount, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	c.CreatedOn = createdOn.Format(time.RFC3339)
	c.UpdatedOn = updatedOn.Format(time.RFC3339)
	return c, nil
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET make=$1, model=$2, year=$3, description=$4, primary_image_url=$5, updated_on=$6 WHERE id=$7 AND deleted_on IS NULL`
	now := time.Now()
	c.UpdatedOn = now.Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, c.Make, c.Model, c.Year, c.Description, c.PrimaryImageURL, now, c.ID)
	return err
}

func (r *carRepository) Delete(ctx context.Context, id int32) error {
	query := `UPDATE cars SET deleted_on = $1 WHERE id = $2 AND deleted_on IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("car not found")
	}
	return nil
}

func (r *carRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Car, error) {
	query := `SELECT id, owner_id, make, model, year, COALESCE(description, ''), COALESCE(primary_image_url, ''), like_count, created_on, updated_on
	          FROM cars WHERE owner_id = $1 AND deleted_on IS NULL ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		var c domain.Car
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Make, &c.Model, &c.Year, &c.Description, &c.PrimaryImageURL, &c.LikeCount, &createdOn, &updatedOn); err != nil {
			return nil, err
		}
		c.CreatedOn = createdOn.Format(time.RFC3339)
		c.UpdatedOn = updatedOn.Format(time.RFC3339)
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// Gallery invokes the garage_gallery database function; the join, like flag
// and pagination happen server-side.
func (r *carRepository) Gallery(ctx context.Context, viewerID, page, pageSize int32) (*domain.GalleryPage, error) {
	query := `SELECT id, owner_id, owner_username, make, model, year, description, primary_image_url, like_count, liked_by_viewer, total_count
	          FROM garage_gallery($1, $2, $3)`
	rows, err := r.db.QueryContext(ctx, query, viewerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.GalleryPage{Page: page, PageSize: pageSize}
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.OwnerUsername, &c.Make, &c.Model, &c.Year, &c.Description, &c.PrimaryImageURL, &c.LikeCount, &c.LikedByViewer, &result.TotalCount); err != nil {
			return nil, err
		}
		result.Cars = append(result.Cars, c)
	}
	return result, rows.Err()
}

// ToggleLike invokes the toggle_car_like database function, which inserts or
// deletes the like row and adjusts like_count atomically.
func (r *carRepository) ToggleLike(ctx context.Context, carID, userID int32) (bool, int32, error) {
	var liked bool
	var likeCount int32
	query := `SELECT liked, like_count FROM toggle_car_like($1, $2)`
	err := r.db.QueryRowContext(ctx, query, carID, userID).Scan(&liked, &likeCount)
	if err != nil {
		return false, 0, err
	}
	return liked, likeCount, nil
}

func (r *carRepository) CreateImage(ctx context.Context, img *domain.CarImage) error {
	query := `INSERT INTO car_images (car_id, uploader_id, storage_key, is_primary, status, file_size, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	img.CreatedOn = now.Format(time.RFC3339)
	return r.db.QueryRowContext(ctx, query, img.CarID, img.UploaderID, img.StorageKey, img.IsPrimary, img.Status, img.FileSize, now).Scan(&img.ID)
}

func (r *carRepository) GetImageByID(ctx context.Context, imageID int32) (*domain.CarImage, error) {
	img := &domain.CarImage{}
	query := `SELECT id, car_id, uploader_id, storage_key, is_primary, status, file_size, created_on FROM car_images WHERE id = $1`
	var createdOn time.Time
	var carID sql.NullInt32
	err := r.db.QueryRowContext(ctx, query, imageID).Scan(&img.ID, &carID, &img.UploaderID, &img.StorageKey, &img.IsPrimary, &img.Status, &img.FileSize, &createdOn)
	if err != nil {
		return nil, err
	}
	if carID.Valid {
		img.CarID = &carID.Int32
	}
	img.CreatedOn = createdOn.Format(time.RFC3339)
	return img, nil
}

func (r *carRepository) GetImages(ctx context.Context, carID int32) ([]domain.CarImage, error) {
	query := `SELECT id, car_id, uploader_id, storage_key, is_primary, status, file_size, created_on
	          FROM car_images WHERE car_id = $1 AND status = 'CONFIRMED' ORDER BY is_primary DESC, created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.CarImage
	for rows.Next() {
		var img domain.CarImage
		var createdOn time.Time
		var cid sql.NullInt32
		if err := rows.Scan(&img.ID, &cid, &img.UploaderID, &img.StorageKey, &img.IsPrimary, &img.Status, &img.FileSize, &createdOn); err != nil {
			return nil, err
		}
		if cid.Valid {
			img.CarID = &cid.Int32
		}
		img.CreatedOn = createdOn.Format(time.RFC3339)
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *carRepository) ConfirmImage(ctx context.Context, imageID, carID int32, fileSize int64) error {
	query := `UPDATE car_images SET status = 'CONFIRMED', car_id = $1, file_size = $2 WHERE id = $3 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, carID, fileSize, imageID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("image not found or not pending")
	}
	return nil
}

// DeleteImage soft deletes an image
func (r *carRepository) DeleteImage(ctx context.Context, imageID int32) error {
	query := `UPDATE car_images SET status = 'DELETED' WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, imageID)
	return err
}

// SetPrimaryImage sets a specific image as primary for a car
func (r *carRepository) SetPrimaryImage(ctx context.Context, carID, imageID int32) error {
	// Unset all primaries for this car
	_, err := r.db.ExecContext(ctx, `UPDATE car_images SET is_primary = false WHERE car_id = $1 AND status = 'CONFIRMED'`, carID)
	if err != nil {
		return err
	}

	// Set new primary
	result, err := r.db.ExecContext(ctx, `UPDATE car_images SET is_primary = true WHERE id = $1 AND car_id = $2 AND status = 'CONFIRMED'`, imageID, carID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("image not found or not confirmed")
	}
	return nil
}

// DeleteExpiredPendingImages removes pending images older than 24 hours
func (r *carRepository) DeleteExpiredPendingImages(ctx context.Context) (int64, error) {
	query := `DELETE FROM car_images WHERE status = 'PENDING' AND created_on < $1`
	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
