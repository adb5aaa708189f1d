package student

import (
	"strings"
	"time"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// Status of an enrolled student.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusGraduated Status = "graduated"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusGraduated}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Student struct {
	ID           string       `json:"id"`
	Name         string       `json:"nama"`
	NIS          string       `json:"nis,omitempty"`
	Program      core.Program `json:"program"`
	Status       Status       `json:"status"`
	Gender       string       `json:"jenis_kelamin,omitempty"`
	BirthDate    *time.Time   `json:"tanggal_lahir,omitempty"`
	GuardianName string       `json:"nama_wali,omitempty"`
	Phone        string       `json:"no_telepon,omitempty"`
	Address      string       `json:"alamat,omitempty"`
	PhotoURL     string       `json:"foto_url,omitempty"`
	PhotoPath    string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// StudentInput holds the editable attributes of a Student, used on create and on full update.
type StudentInput struct {
	Name         string       `json:"nama" validate:"required,notblank,max=255"`
	NIS          string       `json:"nis" validate:"omitempty,max=32,alphanum"`
	Program      core.Program `json:"program" validate:"required,program"`
	Status       Status       `json:"status" validate:"omitempty,student_status"`
	Gender       string       `json:"jenis_kelamin" validate:"omitempty,oneof=L P"`
	BirthDate    string       `json:"tanggal_lahir" validate:"omitempty,datetime=2006-01-02"`
	GuardianName string       `json:"nama_wali" validate:"max=255"`
	Phone        string       `json:"no_telepon" validate:"omitempty,phone"`
	Address      string       `json:"alamat"`
}

func (in *StudentInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.NIS = core.CleanString(in.NIS)
	in.Gender = strings.ToUpper(core.CleanString(in.Gender))
	in.BirthDate = core.CleanString(in.BirthDate)
	in.GuardianName = core.CleanString(in.GuardianName)
	in.Phone = core.CleanString(in.Phone)
	in.Address = core.CleanString(in.Address)
	if in.Status == "" {
		in.Status = StatusActive
	}
}

func (in StudentInput) apply(s *Student) error {
	s.Name = in.Name
	s.NIS = in.NIS
	s.Program = in.Program
	s.Status = in.Status
	s.Gender = in.Gender
	s.GuardianName = in.GuardianName
	s.Phone = in.Phone
	s.Address = in.Address
	s.BirthDate = nil
	if in.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			return err
		}
		s.BirthDate = &bd
	}
	return nil
}

type QueryFilter struct {
	Search  string         `query:"search"`
	Program []core.Program `query:"program"`
	Status  []Status       `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Count is the number of students per program and status.
type Count map[core.Program]map[Status]int
