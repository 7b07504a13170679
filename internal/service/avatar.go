package service

import (
	"context"
	"fmt"
	"io"

	"github.com/restapp/backend/internal/db"
)

const (
	MinAvatarSize     = 100
	MaxAvatarSize     = 1000
	DefaultAvatarSize = 250
)

type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID int64, file io.Reader, width, height int) (string, error)
}

type AvatarService struct {
	users    UserRepository
	uploader AvatarUploader
}

func NewAvatarService(users UserRepository, uploader AvatarUploader) *AvatarService {
	return &AvatarService{users: users, uploader: uploader}
}

// UpdateAvatar uploads the image, crops it to width x height and stores the
// resulting URL on the user. A second upload overwrites the first.
func (s *AvatarService) UpdateAvatar(ctx context.Context, userID int64, file io.Reader, width, height int) (string, error) {
	if !validAvatarSize(width) || !validAvatarSize(height) {
		return "", ErrInvalidInput
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if db.IsNoRows(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	avatarURL, err := s.uploader.UploadAvatar(ctx, userID, file, width, height)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	user, err := s.users.UpdateAvatar(ctx, userID, avatarURL)
	if err != nil {
		if db.IsNoRows(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("update avatar: %w", err)
	}
	if user.Avatar == nil {
		return avatarURL, nil
	}
	return *user.Avatar, nil
}

func validAvatarSize(v int) bool {
	return v >= MinAvatarSize && v <= MaxAvatarSize
}
