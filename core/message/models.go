package message

import (
	"time"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

// Message is a visitor message; approved messages are published as testimonials.
type Message struct {
	ID         string          `json:"id"`
	Name       string          `json:"nama"`
	Email      string          `json:"email,omitempty"`
	Rating     int             `json:"rating"`
	Body       string          `json:"pesan"`
	Status     workflow.Status `json:"status"`
	AdminReply string          `json:"balasan_admin,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ReviewedBy string          `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
}

// Testimonial is the public view of an approved message.
type Testimonial struct {
	ID         string    `json:"id"`
	Name       string    `json:"nama"`
	Rating     int       `json:"rating"`
	Body       string    `json:"pesan"`
	AdminReply string    `json:"balasan_admin,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m Message) Testimonial() Testimonial {
	return Testimonial{
		ID:         m.ID,
		Name:       m.Name,
		Rating:     m.Rating,
		Body:       m.Body,
		AdminReply: m.AdminReply,
		CreatedAt:  m.CreatedAt,
	}
}

// NewMessage is the public message form. Status is accepted but ignored: messages always start pending.
type NewMessage struct {
	Name   string `json:"nama" validate:"required,notblank,max=255"`
	Email  string `json:"email" validate:"omitempty,email"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Body   string `json:"pesan" validate:"required,notblank,max=5000"`
	Status string `json:"status"`
}

func (nm *NewMessage) Clean() {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Body = core.CleanString(nm.Body)
}

// ReviewMessage carries an approve or reject decision, with an optional reply published alongside.
type ReviewMessage struct {
	Reply string `json:"balasan_admin" validate:"max=5000"`
}

// ReplyMessage sets the published reply of an approved message.
type ReplyMessage struct {
	Reply string `json:"balasan_admin" validate:"required,notblank,max=5000"`
}

type QueryFilter struct {
	Search string            `query:"search"`
	Status []workflow.Status `query:"status"`
	Rating []int             `query:"rating"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
