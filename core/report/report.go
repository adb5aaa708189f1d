// Package report aggregates the foundation-wide summary shown on the reports tab.
package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

type (
	StudentCounter interface {
		Count(ctx context.Context) (student.Count, error)
	}

	TeacherLister interface {
		Query(ctx context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering) ([]teacher.Teacher, error)
	}

	GraduateLister interface {
		Query(ctx context.Context, filter *graduate.QueryFilter, ordering []core.DBOrdering) ([]graduate.Graduate, error)
	}

	StatusCounter interface {
		CountByStatus(ctx context.Context) (map[workflow.Status]int, error)
	}

	RatingAverager interface {
		AverageRating(ctx context.Context) (float64, error)
	}
)

type Summary struct {
	Students          StudentSummary          `json:"siswa"`
	TeachersByProgram map[core.Program]int    `json:"pengajar_per_program"`
	Teachers          int                     `json:"total_pengajar"`
	GraduatesByYear   map[int]int             `json:"lulusan_per_tahun"`
	Graduates         int                     `json:"total_lulusan"`
	Admissions        map[workflow.Status]int `json:"spmb"`
	Messages          map[workflow.Status]int `json:"pesan"`
	AverageRating     float64                 `json:"rata_rata_rating"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

type StudentSummary struct {
	Total     int                    `json:"total"`
	ByProgram map[core.Program]int   `json:"per_program"`
	ByStatus  map[student.Status]int `json:"per_status"`
}

type Service struct {
	students   StudentCounter
	teachers   TeacherLister
	graduates  GraduateLister
	admissions StatusCounter
	messages   interface {
		StatusCounter
		RatingAverager
	}
}

func NewService(
	students StudentCounter,
	teachers TeacherLister,
	graduates GraduateLister,
	admissions StatusCounter,
	messages interface {
		StatusCounter
		RatingAverager
	},
) *Service {
	return &Service{
		students:   students,
		teachers:   teachers,
		graduates:  graduates,
		admissions: admissions,
		messages:   messages,
	}
}

func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{
		Students: StudentSummary{
			ByProgram: make(map[core.Program]int, len(core.Programs)),
			ByStatus:  make(map[student.Status]int, len(student.Statuses)),
		},
		TeachersByProgram: make(map[core.Program]int, len(core.Programs)),
		GraduatesByYear:   make(map[int]int),
		Admissions:        make(map[workflow.Status]int, len(workflow.Statuses)),
		Messages:          make(map[workflow.Status]int, len(workflow.Statuses)),
		GeneratedAt:       time.Now().UTC(),
	}

	counts, err := svc.students.Count(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting students")
	}
	for prog, byStatus := range counts {
		for status, n := range byStatus {
			sum.Students.Total += n
			sum.Students.ByProgram[prog] += n
			sum.Students.ByStatus[status] += n
		}
	}

	teachers, err := svc.teachers.Query(ctx, &teacher.QueryFilter{}, nil)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying teachers")
	}
	sum.Teachers = len(teachers)
	for _, t := range teachers {
		sum.TeachersByProgram[t.Program]++
	}

	graduates, err := svc.graduates.Query(ctx, &graduate.QueryFilter{}, nil)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying graduates")
	}
	sum.Graduates = len(graduates)
	for _, g := range graduates {
		sum.GraduatesByYear[g.GraduationYear]++
	}

	admissions, err := svc.admissions.CountByStatus(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting registrations")
	}
	messages, err := svc.messages.CountByStatus(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting messages")
	}
	for _, st := range workflow.Statuses {
		sum.Admissions[st] = admissions[st]
		sum.Messages[st] = messages[st]
	}

	if sum.AverageRating, err = svc.messages.AverageRating(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "averaging ratings")
	}
	return sum, nil
}
