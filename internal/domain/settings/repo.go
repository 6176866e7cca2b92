package settings

import "context"

type SettingRepository interface {
	Create(ctx context.Context, s *SystemSetting) error
	Get(ctx context.Context, key string) (*SystemSetting, error)
	// Upsert writes the value whether or not the key exists yet.
	Upsert(ctx context.Context, s *SystemSetting) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*SystemSetting, error)
}
