package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
)

const staffPhotoDir = "staff"

type StaffInput struct {
	Name       string
	Position   string
	Department string
	Email      string
	ReportsTo  *uuid.UUID
	SortOrder  int32
}

func (in *StaffInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.Department = strings.TrimSpace(in.Department)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		return ErrInvalidArgument
	}

	if in.Email != "" {
		addr, err := mail.ParseAddress(in.Email)
		if err != nil {
			return ErrInvalidArgument
		}
		in.Email = addr.Address
	}

	if in.ReportsTo != nil && *in.ReportsTo == uuid.Nil {
		in.ReportsTo = nil
	}

	return nil
}

func (s *Service) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	const op = "service.staff.ListStaff"

	lg := log.From(ctx).With("op", op)

	members, err := s.db.ListStaff(ctx)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return members, nil
}

func (s *Service) StaffByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	const op = "service.staff.StaffByID"

	lg := log.From(ctx).With("op", op, "id", id.String())

	m, err := s.db.StaffByID(ctx, id)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return m, nil
}

// OrgChart возвращает дерево подчинения, на каждом уровне в порядке ListStaff.
func (s *Service) OrgChart(ctx context.Context) ([]*models.OrgNode, error) {
	const op = "service.staff.OrgChart"

	members, err := s.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buildOrgChart(members), nil
}

func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*models.StaffMember, error) {
	const op = "service.staff.CreateStaff"

	lg := log.From(ctx).With("op", op)

	if err := in.normalize(); err != nil {
		lg.Warn("invalid staff member")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := &models.StaffMember{
		ID:         uuid.New(),
		Name:       in.Name,
		Position:   in.Position,
		Department: in.Department,
		Email:      in.Email,
		ReportsTo:  in.ReportsTo,
		SortOrder:  in.SortOrder,
	}

	if err := s.db.CreateStaff(ctx, m); err != nil {
		return nil, fromStorage(lg, op, err)
	}

	lg.Info("staff member created", "id", m.ID.String())

	return m, nil
}

// UpdateStaff отклоняет руководителя, который замкнул бы цикл подчинения.
func (s *Service) UpdateStaff(ctx context.Context, id uuid.UUID, in StaffInput) (*models.StaffMember, error) {
	const op = "service.staff.UpdateStaff"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := in.normalize(); err != nil {
		lg.Warn("invalid staff member")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.ReportsTo != nil {
		members, err := s.db.ListStaff(ctx)
		if err != nil {
			return nil, fromStorage(lg, op, err)
		}

		if wouldCycle(id, *in.ReportsTo, members) {
			lg.Warn("reporting cycle rejected", "reports_to", in.ReportsTo.String())
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
	}

	updated, err := s.db.UpdateStaff(ctx, &models.StaffMember{
		ID:         id,
		Name:       in.Name,
		Position:   in.Position,
		Department: in.Department,
		Email:      in.Email,
		ReportsTo:  in.ReportsTo,
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return updated, nil
}

// wouldCycle сообщает, создаст ли подчинение id руководителю manager цикл.
func wouldCycle(id, manager uuid.UUID, members []models.StaffMember) bool {
	parent := make(map[uuid.UUID]uuid.UUID, len(members))
	for _, m := range members {
		if m.ReportsTo != nil {
			parent[m.ID] = *m.ReportsTo
		}
	}

	seen := map[uuid.UUID]struct{}{}
	for cur := manager; ; {
		if cur == id {
			return true
		}
		if _, dup := seen[cur]; dup {
			return false
		}
		seen[cur] = struct{}{}

		next, ok := parent[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// DeleteStaff удаляет запись, затем фото. Неудачное удаление blob только логируется.
func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	const op = "service.staff.DeleteStaff"

	lg := log.From(ctx).With("op", op, "id", id.String())

	m, err := s.db.StaffByID(ctx, id)
	if err != nil {
		return fromStorage(lg, op, err)
	}

	if err := s.db.DeleteStaff(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	s.removeBlob(ctx, op, m.PhotoKey)

	return nil
}

// UploadStaffPhoto сохраняет новое фото и подменяет им старое, прежнее удаляется.
func (s *Service) UploadStaffPhoto(ctx context.Context, id uuid.UUID, up Upload) (*models.StaffMember, error) {
	const op = "service.staff.UploadStaffPhoto"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := s.checkUpload(up); err != nil {
		lg.Warn("upload rejected", "content_type", up.ContentType, "size", up.Size)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.db.StaffByID(ctx, id)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	obj, err := s.blobs.Put(ctx, staffPhotoDir, up.Reader, up.Size, up.ContentType)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	updated, err := s.db.SetStaffPhoto(ctx, id, obj.Key, obj.URL)
	if err != nil {
		s.removeBlob(ctx, op, obj.Key)
		return nil, fromStorage(lg, op, err)
	}

	s.removeBlob(ctx, op, current.PhotoKey)

	return updated, nil
}

func (s *Service) removeBlob(ctx context.Context, op, key string) {
	if key == "" {
		return
	}

	if err := s.blobs.Remove(ctx, key); err != nil {
		log.From(ctx).Warn("blob remove failed", "op", op, "key", key, "err", err)
	}
}
