package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var (
	ErrNotFound   = errors.New("schedule change request not found")
	ErrNotPending = errors.New("schedule change request already decided")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, r ChangeRequest) (ChangeRequest, error)
		QueryRequests(ctx context.Context, teacherID string) ([]ChangeRequest, error)
		QueryRequestsByParent(ctx context.Context, parentID string) ([]ChangeRequest, error)
		GetRequestByID(ctx context.Context, id string) (ChangeRequest, error)
		// SetRequestStatus stamps the decision; rejectionReason is only kept
		// for rejections.
		SetRequestStatus(ctx context.Context, id, status, rejectionReason string) (ChangeRequest, error)
	}

	// ScheduleWriter is the student-side write used by approval and by its
	// compensating rollback.
	ScheduleWriter interface {
		SetSchedule(ctx context.Context, studentID, schedule string) error
	}

	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	Notifier interface {
		PushAsync(ntype, title, message, targetID string)
	}

	Service struct {
		repo       Repository
		students   ScheduleWriter
		logger     core.Logger
		activities ActivityLogger
		notifier   Notifier
	}
)

func NewService(repo Repository, students ScheduleWriter, logger core.Logger, activities ActivityLogger, notifier Notifier) *Service {
	return &Service{repo: repo, students: students, logger: logger, activities: activities, notifier: notifier}
}

func (svc *Service) Create(ctx context.Context, nc NewChangeRequest) (ChangeRequest, error) {
	if err := nc.Validate(); err != nil {
		return ChangeRequest{}, err
	}

	now := time.Now().UTC()
	req := ChangeRequest{
		StudentID:         nc.StudentID,
		ParentID:          nc.ParentID,
		TeacherID:         nc.TeacherID,
		CurrentSchedule:   nc.CurrentSchedule,
		RequestedSchedule: nc.RequestedSchedule,
		Reason:            nc.Reason,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	req, err := svc.repo.CreateRequest(ctx, req)
	if err != nil {
		return ChangeRequest{}, err
	}

	svc.notifier.PushAsync("schedule", "Schedule change requested",
		fmt.Sprintf("%s -> %s", req.CurrentSchedule, req.RequestedSchedule), req.TeacherID)
	return req, nil
}

func (svc *Service) ForTeacher(ctx context.Context, teacherID string) ([]ChangeRequest, error) {
	return svc.repo.QueryRequests(ctx, teacherID)
}

func (svc *Service) ForParent(ctx context.Context, parentID string) ([]ChangeRequest, error) {
	return svc.repo.QueryRequestsByParent(ctx, parentID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (ChangeRequest, error) {
	return svc.repo.GetRequestByID(ctx, id)
}

// Approve moves the student to the requested slot, then marks the request
// approved. When the second write fails the schedule write is rolled back so
// the pair never ends half-applied.
func (svc *Service) Approve(ctx context.Context, id string) (ChangeRequest, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return ChangeRequest{}, err
	}
	if req.Status != StatusPending {
		return ChangeRequest{}, ErrNotPending
	}

	if err = svc.students.SetSchedule(ctx, req.StudentID, req.RequestedSchedule); err != nil {
		return ChangeRequest{}, pkgerrors.Wrap(err, "updating student schedule")
	}

	approved, err := svc.repo.SetRequestStatus(ctx, id, StatusApproved, "")
	if err != nil {
		// compensate: restore the previous slot so the student record and the
		// request stay consistent
		if rbErr := svc.students.SetSchedule(ctx, req.StudentID, req.CurrentSchedule); rbErr != nil {
			svc.logger.Error(fmt.Sprintf("schedule: rollback of %s failed: %v", req.StudentID, rbErr), rbErr)
		}
		return ChangeRequest{}, pkgerrors.Wrap(err, "marking request approved")
	}
	req = approved

	svc.activities.LogAsync(req.TeacherID, "schedule", "approve", "Schedule change approved",
		fmt.Sprintf("%s -> %s", req.CurrentSchedule, req.RequestedSchedule), req.StudentID, req.ID)
	svc.notifier.PushAsync("schedule", "Schedule change approved", req.RequestedSchedule, req.ParentID)
	return req, nil
}

func (svc *Service) Reject(ctx context.Context, id, reason string) (ChangeRequest, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return ChangeRequest{}, err
	}
	if req.Status != StatusPending {
		return ChangeRequest{}, ErrNotPending
	}

	req, err = svc.repo.SetRequestStatus(ctx, id, StatusRejected, reason)
	if err != nil {
		return ChangeRequest{}, err
	}

	svc.activities.LogAsync(req.TeacherID, "schedule", "reject", "Schedule change rejected", reason, req.StudentID, req.ID)
	svc.notifier.PushAsync("schedule", "Schedule change rejected", reason, req.ParentID)
	return req, nil
}
