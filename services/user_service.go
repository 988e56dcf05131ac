package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	uploader *utils.S3Uploader
}

func NewUserService(db *gorm.DB, uploader *utils.S3Uploader) *UserService {
	return &UserService{db: db, uploader: uploader}
}

// UserLocation resolves the user's configured IANA timezone, falling back
// to UTC on empty or invalid names. Every local-date computation (summary
// bucketing, streaks) goes through this.
func UserLocation(user *models.User) *time.Location {
	if user == nil || user.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *UserService) ByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND disabled = ?", userID, false).
		First(&user).Error
	if err != nil {
		return nil, errors.New("user not found or disabled")
	}
	return &user, nil
}

type ProfileInput struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Timezone       string  `json:"timezone"` // IANA name, e.g. "Europe/Berlin"
	HeightCm       float64 `json:"height_cm"`
	WeightKg       float64 `json:"weight_kg"`
	ProfilePicture string  `json:"profile_picture"` // base64 data URL
	Onboarded      *bool   `json:"onboarded"` // pointer: absent means leave unchanged
}

func (s *UserService) Profile(ctx context.Context, userID uint) (map[string]any, error) {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":              user.ID,
		"email":           user.Email,
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"timezone":        user.Timezone,
		"height_cm":       user.HeightCm,
		"weight_kg":       user.WeightKg,
		"profile_picture": user.ProfilePicture,
		"onboarded":       user.Onboarded,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) error {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", input.Timezone)
		}
		user.Timezone = input.Timezone
	}
	if input.HeightCm > 0 {
		user.HeightCm = input.HeightCm
	}
	if input.WeightKg > 0 {
		user.WeightKg = input.WeightKg
	}
	if input.ProfilePicture != "" {
		if s.uploader == nil {
			return errors.New("image uploads are not configured")
		}
		url, err := s.uploader.UploadBase64Image(ctx, input.ProfilePicture, "profile-pictures/"+fmt.Sprint(userID))
		if err != nil {
			return fmt.Errorf("failed to upload image: %w", err)
		}
		user.ProfilePicture = url
	}
	if input.Onboarded != nil {
		user.Onboarded = *input.Onboarded
	}

	return s.db.WithContext(ctx).Save(user).Error
}

func (s *UserService) Disable(ctx context.Context, userID uint) error {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Disabled = true
	return s.db.WithContext(ctx).Save(user).Error
}
