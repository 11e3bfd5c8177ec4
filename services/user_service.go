package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"habitTrackerAPI/internal/identity"
	"habitTrackerAPI/internal/types/user"
)

// PresetAvatars are offered on the profile page.
var PresetAvatars = []string{
	"https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1494790108755-2616b612b647?w=150&h=150&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150&h=150&fit=crop&crop=face",
	"https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=150&h=150&fit=crop&crop=face",
}

type UserService struct {
	directory identity.Directory
}

func NewUserService(directory identity.Directory) *UserService {
	return &UserService{directory: directory}
}

// merge fills fields the directory left blank from the token claims.
func merge(p *user.Profile, id *identity.Identity) *user.Profile {
	out := *p
	if out.UID == "" {
		out.UID = id.UID
	}
	if out.Email == "" {
		out.Email = id.Email
	}
	if out.DisplayName == "" {
		out.DisplayName = id.DisplayName
	}
	if out.PhotoURL == "" {
		out.PhotoURL = id.PhotoURL
	}
	return &out
}

func (s *UserService) GetProfile(ctx context.Context, id *identity.Identity) (*user.Profile, error) {
	p, err := s.directory.Lookup(ctx, id.UID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return id.Profile(), nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return merge(p, id), nil
}

func (s *UserService) Avatars() []string {
	return slices.Clone(PresetAvatars)
}

func (s *UserService) UpdatePhoto(ctx context.Context, id *identity.Identity, photoURL string) (*user.Profile, error) {
	photoURL = strings.TrimSpace(photoURL)
	u, err := url.Parse(photoURL)
	if photoURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("Please choose a valid photo URL")
	}

	p, err := s.directory.UpdatePhoto(ctx, id.UID, photoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	return merge(p, id), nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.directory.SignOut(ctx, userID); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}
