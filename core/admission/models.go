package admission

import (
	"time"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

// Registration is an SPMB (new student admission) application.
type Registration struct {
	ID            string          `json:"id"`
	ApplicantName string          `json:"nama_lengkap"`
	ProgramChoice core.Program    `json:"program_pilihan"`
	GuardianName  string          `json:"nama_wali"`
	Phone         string          `json:"no_telepon"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"alamat"`
	BirthDate     *time.Time      `json:"tanggal_lahir,omitempty"`
	Status        workflow.Status `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ReviewedBy    string          `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNote    string          `json:"review_note,omitempty"`
}

// NewRegistration is the public SPMB form. Status is accepted but ignored: submissions always start pending.
type NewRegistration struct {
	ApplicantName string       `json:"nama_lengkap" validate:"required,notblank,max=255"`
	ProgramChoice core.Program `json:"program_pilihan" validate:"required,program"`
	GuardianName  string       `json:"nama_wali" validate:"required,notblank,max=255"`
	Phone         string       `json:"no_telepon" validate:"required,phone"`
	Email         string       `json:"email" validate:"omitempty,email"`
	Address       string       `json:"alamat" validate:"required,notblank"`
	BirthDate     string       `json:"tanggal_lahir" validate:"omitempty,datetime=2006-01-02"`
	Status        string       `json:"status"`
}

func (nr *NewRegistration) Clean() {
	nr.ApplicantName = core.CleanString(nr.ApplicantName)
	nr.ProgramChoice = core.Program(core.CleanString(string(nr.ProgramChoice)))
	nr.GuardianName = core.CleanString(nr.GuardianName)
	nr.Phone = core.CleanString(nr.Phone)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Address = core.CleanString(nr.Address)
	nr.BirthDate = core.CleanString(nr.BirthDate)
}

// ReviewRegistration carries an approve or reject decision.
type ReviewRegistration struct {
	Note string `json:"note" validate:"max=2000"`
}

type QueryFilter struct {
	Search  string            `query:"search"`
	Status  []workflow.Status `query:"status"`
	Program []core.Program    `query:"program"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
