package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload is a file received from the client, ready to hand to the media service.
type Upload struct {
	Filename string
	Content  io.Reader
}

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// UserService handles registration and profile updates.
type UserService struct {
	users  UserStore
	media  MediaUploader
	audit  AuditRecorder
	logger *slog.Logger
}

func NewUserService(users UserStore, media MediaUploader, audit AuditRecorder, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, media: media, audit: audit, logger: logger}
}

// Register creates a user. The avatar is uploaded before the record is
// written, so a failed upload never leaves a partial user behind.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.SanitizedUser, error) {
	if utils.AnyBlank(in.FullName, in.Email, in.Username, in.Password) {
		return nil, utils.BadRequest("all fields are required")
	}

	username := utils.NormalizeUsername(in.Username)
	email := utils.NormalizeEmail(in.Email)

	_, err := s.users.FindByIdentity(ctx, username, email)
	switch {
	case err == nil:
		return nil, utils.Conflict("user with email or username already exists")
	case !errors.Is(err, ErrUserNotFound):
		return nil, utils.Internal("failed to check existing users", err)
	}

	if in.Avatar == nil {
		return nil, utils.BadRequest("avatar file is required")
	}
	if s.media == nil {
		return nil, utils.Internal("file upload service not available", nil)
	}

	avatarURL, err := s.media.UploadFile(ctx, in.Avatar.Content, in.Avatar.Filename)
	if err != nil || avatarURL == "" {
		s.logger.ErrorContext(ctx, "avatar upload failed", "error", err)
		return nil, utils.BadRequest("avatar file is required")
	}

	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = s.media.UploadFile(ctx, in.CoverImage.Content, in.CoverImage.Filename)
		if err != nil {
			s.logger.WarnContext(ctx, "cover image upload failed, continuing without it", "error", err)
			coverURL = ""
		}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   strings.TrimSpace(in.FullName),
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, utils.Conflict("user with email or username already exists")
		}
		return nil, utils.Internal("something went wrong while registering the user", err)
	}

	recordAudit(ctx, s.audit, s.logger, AuditEvent{Type: AuditRegister, UserID: user.ID.Hex(), Success: true})

	sanitized := user.Sanitize()
	return &sanitized, nil
}

// CurrentUser returns the sanitized record for id.
func (s *UserService) CurrentUser(ctx context.Context, id primitive.ObjectID) (*models.SanitizedUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

func (s *UserService) UpdateAccountDetails(ctx context.Context, id primitive.ObjectID, fullName, email string) (*models.SanitizedUser, error) {
	if utils.AnyBlank(fullName, email) {
		return nil, utils.BadRequest("all fields are required")
	}
	fullName = strings.TrimSpace(fullName)
	normalized := utils.NormalizeEmail(email)
	return s.updateProfile(ctx, id, ProfileUpdate{FullName: &fullName, Email: &normalized})
}

func (s *UserService) UpdateAvatar(ctx context.Context, id primitive.ObjectID, file *Upload) (*models.SanitizedUser, error) {
	if file == nil {
		return nil, utils.BadRequest("avatar file is missing")
	}
	url, err := s.upload(ctx, file, "error while uploading avatar")
	if err != nil {
		return nil, err
	}
	return s.updateProfile(ctx, id, ProfileUpdate{Avatar: &url})
}

func (s *UserService) UpdateCoverImage(ctx context.Context, id primitive.ObjectID, file *Upload) (*models.SanitizedUser, error) {
	if file == nil {
		return nil, utils.BadRequest("cover image is missing")
	}
	url, err := s.upload(ctx, file, "error while uploading cover image")
	if err != nil {
		return nil, err
	}
	return s.updateProfile(ctx, id, ProfileUpdate{CoverImage: &url})
}

func (s *UserService) upload(ctx context.Context, file *Upload, failure string) (string, error) {
	if s.media == nil {
		return "", utils.Internal("file upload service not available", nil)
	}
	url, err := s.media.UploadFile(ctx, file.Content, file.Filename)
	if err != nil || url == "" {
		s.logger.ErrorContext(ctx, "media upload failed", "filename", file.Filename, "error", err)
		return "", utils.BadRequest(failure)
	}
	return url, nil
}

func (s *UserService) updateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.SanitizedUser, error) {
	user, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, s.storeError(err)
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

func (s *UserService) storeError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return utils.NotFound("user does not exist")
	case errors.Is(err, ErrDuplicateUser):
		return utils.Conflict("email is already in use")
	default:
		return utils.Internal("failed to update user", err)
	}
}
