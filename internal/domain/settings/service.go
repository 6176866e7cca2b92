package settings

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo SettingRepository
}

func NewService(repo SettingRepository) *Service {
	return &Service{repo: repo}
}

type SettingInput struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
}

// Create adds a new setting. An existing key is ErrConflict.
func (s *Service) Create(ctx context.Context, in SettingInput) (*SystemSetting, error) {
	key, err := normalizeKey(in.Key)
	if err != nil {
		return nil, err
	}
	setting := &SystemSetting{Key: key, Value: in.Value, Description: in.Description}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

// Update writes the value, creating the key if it does not exist yet.
func (s *Service) Update(ctx context.Context, in SettingInput) (*SystemSetting, error) {
	key, err := normalizeKey(in.Key)
	if err != nil {
		return nil, err
	}
	setting := &SystemSetting{Key: key, Value: in.Value, Description: in.Description}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

func (s *Service) Get(ctx context.Context, key string) (*SystemSetting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

// GetAll returns every setting keyed by name.
func (s *Service) GetAll(ctx context.Context) (map[string]*SystemSetting, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*SystemSetting, len(items))
	for _, item := range items {
		out[item.Key] = item
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, key)
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrValidation)
	}
	return key, nil
}
