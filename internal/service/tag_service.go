package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
)

// TagService manages tags shared between events.
type TagService struct {
	repo   *repository.TagRepository
	events *repository.EventRepository
}

func NewTagService(repo *repository.TagRepository, events *repository.EventRepository) *TagService {
	return &TagService{repo: repo, events: events}
}

func (s *TagService) List(ctx context.Context, req repository.PageRequest) (repository.Page[model.Tag], error) {
	return s.repo.List(ctx, req)
}

func (s *TagService) All(ctx context.Context) ([]model.Tag, error) {
	return s.repo.All(ctx)
}

func (s *TagService) Get(ctx context.Context, id uint) (*model.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	return tag, nil
}

func (s *TagService) Save(ctx context.Context, tag *model.Tag) error {
	tag.Title = strings.TrimSpace(tag.Title)
	if errs := model.ValidateTag(tag); len(errs) > 0 {
		return errs
	}
	return s.repo.Save(ctx, tag)
}

// CanBeDeleted reports whether no event is linked to the tag.
func (s *TagService) CanBeDeleted(ctx context.Context, tag *model.Tag) (bool, error) {
	n, err := s.events.CountByTag(ctx, tag.ID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *TagService) Delete(ctx context.Context, tag *model.Tag) error {
	ok, err := s.CanBeDeleted(ctx, tag)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTagInUse
	}
	return s.repo.Delete(ctx, tag)
}

// ParseTitles splits a comma separated list, trimming blanks and dropping duplicates.
func ParseTitles(raw string) []string {
	var titles []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		title := strings.TrimSpace(part)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles
}

// resolveTags finds each tag by title through repo and creates the missing ones.
// An invalid new title fails the whole call with a field error on "tags".
func resolveTags(ctx context.Context, repo *repository.TagRepository, titles []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(titles))
	for _, title := range titles {
		existing, err := repo.FindByTitle(ctx, title)
		if err == nil {
			tags = append(tags, *existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		tag := model.Tag{Title: title}
		if errs := model.ValidateTag(&tag); len(errs) > 0 {
			return nil, model.FieldErrors{{Field: "tags", Message: "\"" + title + "\": " + errs[0].Message}}
		}
		if err := repo.Save(ctx, &tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ValidateTitles checks titles of tags that resolveTags would have to create, without writing anything.
func (s *TagService) ValidateTitles(titles []string) model.FieldErrors {
	var errs model.FieldErrors
	for _, title := range titles {
		if fe := model.ValidateTag(&model.Tag{Title: title}); len(fe) > 0 {
			errs.Add("tags", "\""+title+"\": "+fe[0].Message)
		}
	}
	return errs
}
