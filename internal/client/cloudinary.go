// 아바타 이미지를 Cloudinary에 업로드하는 클라이언트
//
// 환경변수:
//   - CLD_NAME, CLD_API_KEY, CLD_API_SECRET: Cloudinary 계정 정보
//   - CLD_FOLDER: 업로드 폴더 (기본값 RestApp)
//
// public_id는 <folder>/<user_id>로 고정되어 재업로드 시 이전 이미지를 덮어씁니다.

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/restapp/backend/internal/config"
)

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cfg config.CloudinaryConfig) (*CloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary: CLD_NAME, CLD_API_KEY and CLD_API_SECRET are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

// UploadAvatar - 업로드 후 width x height로 잘라낸(c_fill) URL 반환
func (u *CloudinaryUploader) UploadAvatar(ctx context.Context, userID int64, file io.Reader, width, height int) (string, error) {
	publicID := u.publicID(userID)

	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	return u.avatarURL(publicID, width, height)
}

func (u *CloudinaryUploader) publicID(userID int64) string {
	id := strconv.FormatInt(userID, 10)
	if u.folder == "" {
		return id
	}
	return u.folder + "/" + id
}

func (u *CloudinaryUploader) avatarURL(publicID string, width, height int) (string, error) {
	img, err := u.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary image: %w", err)
	}
	img.Transformation = fmt.Sprintf("c_fill,h_%d,w_%d", height, width)

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary url: %w", err)
	}
	return url, nil
}
