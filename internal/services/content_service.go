package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

type ContentService struct {
	db            *gorm.DB
	subscriptions *SubscriptionService
}

func NewContentService(db *gorm.DB, subscriptions *SubscriptionService) *ContentService {
	return &ContentService{db: db, subscriptions: subscriptions}
}

// List returns library content matching the filter. Premium items are only
// included for owners with an active premium subscription.
func (s *ContentService) List(ctx context.Context, ownerID uuid.UUID, filter dto.ContentFilter) ([]models.HealthContent, error) {
	if filter.Trimester < 0 || filter.Trimester > 3 {
		return nil, fmt.Errorf("%w: trimester must be 1, 2 or 3", errs.ErrInvalidInput)
	}
	if filter.ContentType != "" && !models.IsValidContentType(filter.ContentType) {
		return nil, fmt.Errorf("%w: unknown content type %q", errs.ErrInvalidInput, filter.ContentType)
	}

	premium, err := s.subscriptions.IsPremium(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.HealthContent{})
	if filter.Trimester > 0 {
		query = query.Where("trimester = ?", filter.Trimester)
	}
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}
	if !premium {
		query = query.Where("is_premium = ?", false)
	}

	items := []models.HealthContent{}
	if err := query.Order("trimester ASC, created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// Recommended returns free content for a trimester, newest first.
func (s *ContentService) Recommended(ctx context.Context, trimester, limit int) ([]models.HealthContent, error) {
	if trimester < 1 || trimester > 3 {
		trimester = 1
	}
	items := []models.HealthContent{}
	err := s.db.WithContext(ctx).
		Where("trimester = ? AND is_premium = ?", trimester, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("recommended content: %w", err)
	}
	return items, nil
}

func (s *ContentService) Create(ctx context.Context, item *dto.ContentItem) (*models.HealthContent, error) {
	content, err := contentFromItem(item)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: content %q already exists", errs.ErrConflict, content.Title)
		}
		return nil, fmt.Errorf("create content: %w", err)
	}
	return content, nil
}

// ImportFile upserts the items of a YAML content file by title and returns
// how many were written.
func (s *ContentService) ImportFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read content file: %w", err)
	}

	var file dto.ContentFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("%w: parse content file: %v", errs.ErrInvalidInput, err)
	}

	rows := make([]*models.HealthContent, 0, len(file.Items))
	for i := range file.Items {
		content, err := contentFromItem(&file.Items[i])
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i+1, err)
		}
		rows = append(rows, content)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"body", "content_type", "trimester", "week_range_start", "week_range_end",
			"tags", "is_premium", "image_url", "video_url", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("import content: %w", err)
	}
	return len(rows), nil
}

func contentFromItem(item *dto.ContentItem) (*models.HealthContent, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	contentType := item.ContentType
	if contentType == "" {
		contentType = models.ContentGeneral
	}
	if !models.IsValidContentType(contentType) {
		return nil, fmt.Errorf("%w: unknown content type %q", errs.ErrInvalidInput, item.ContentType)
	}
	if item.Trimester < 1 || item.Trimester > 3 {
		return nil, fmt.Errorf("%w: trimester must be 1, 2 or 3", errs.ErrInvalidInput)
	}
	if item.WeekRangeStart != nil && item.WeekRangeEnd != nil && *item.WeekRangeStart > *item.WeekRangeEnd {
		return nil, fmt.Errorf("%w: week range is inverted", errs.ErrInvalidInput)
	}

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	return &models.HealthContent{
		Title:          title,
		Body:           item.Content,
		ContentType:    contentType,
		Trimester:      item.Trimester,
		WeekRangeStart: item.WeekRangeStart,
		WeekRangeEnd:   item.WeekRangeEnd,
		Tags:           datatypes.JSON(encoded),
		IsPremium:      item.IsPremium,
		ImageURL:       item.ImageURL,
		VideoURL:       item.VideoURL,
	}, nil
}
