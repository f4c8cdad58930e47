// Package version 目录记录的修订历史
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
)

var ErrNotFound = errors.New("revision not found")

// Record 写入一条修订快照，obj 以 JSON 形式保存
func Record(ctx context.Context, repo *repository.VersionRepository, contentType, objectID string, obj any, user *model.User, comment string) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("serialize %s %s: %w", contentType, objectID, err)
	}

	v := &model.Version{
		ID:          uuid.New().String(),
		ContentType: contentType,
		ObjectID:    objectID,
		Serialized:  datatypes.JSON(data),
		Comment:     comment,
	}
	if user != nil {
		v.UserID = user.ID
	}
	return repo.Create(ctx, v)
}

// FieldChange 单个字段的变化
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Diff 两个修订之间的差异
type Diff struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Changes []FieldChange `json:"changes"`
}

// 不参与比较的字段
var ignoredFields = map[string]bool{
	"modified_date": true,
	"modified_by":   true,
	"created_by":    true,
}

// Service 修订服务
type Service struct {
	repo *repository.Repositories
}

// NewService 创建修订服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// List 对象的修订列表
func (s *Service) List(ctx context.Context, contentType, objectID string, offset, limit int) ([]*model.Version, int64, error) {
	return s.repo.Version.ListForObject(ctx, contentType, objectID, offset, limit)
}

// Get 获取对象的某个修订
func (s *Service) Get(ctx context.Context, contentType, objectID, id string) (*model.Version, error) {
	v, err := s.repo.Version.GetByID(ctx, contentType, objectID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Diff 比较同一对象的两个修订
func (s *Service) Diff(ctx context.Context, contentType, objectID, fromID, toID string) (*Diff, error) {
	from, err := s.Get(ctx, contentType, objectID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.Get(ctx, contentType, objectID, toID)
	if err != nil {
		return nil, err
	}

	changes, err := DiffSnapshots(from.Serialized, to.Serialized)
	if err != nil {
		return nil, err
	}
	return &Diff{From: from.ID, To: to.ID, Changes: changes}, nil
}

// DiffSnapshots 按顶层字段比较两个 JSON 快照，结果按字段名排序
func DiffSnapshots(from, to []byte) ([]FieldChange, error) {
	var a, b map[string]any
	if err := json.Unmarshal(from, &a); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := json.Unmarshal(to, &b); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	changes := make([]FieldChange, 0)
	for k := range keys {
		if ignoredFields[k] {
			continue
		}
		if !reflect.DeepEqual(a[k], b[k]) {
			changes = append(changes, FieldChange{Field: k, Old: a[k], New: b[k]})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes, nil
}
