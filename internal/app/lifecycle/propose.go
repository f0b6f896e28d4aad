package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/app/system/inputval"
	"github.com/dalemusser/docthrough/internal/domain/models"
)

// Proposal is the input of Propose.
type Proposal struct {
	Title    string    `json:"title" validate:"required,max=200" label:"Title"`
	Content  string    `json:"content" validate:"required" label:"Content"`
	Source   string    `json:"source" validate:"required,httpurl" label:"Source"`
	Field    string    `json:"field" validate:"required,field" label:"Field"`
	DocType  string    `json:"doc_type" validate:"required,doctype" label:"Document type"`
	Capacity int       `json:"capacity" validate:"gte=2" label:"Capacity"`
	Deadline time.Time `json:"deadline" validate:"required" label:"Deadline"`
}

func (p *Proposal) normalize() {
	p.Title = htmlsanitize.Text(p.Title)
	p.Content = htmlsanitize.Body(p.Content)
	p.Source = strings.TrimSpace(p.Source)
	p.Field = strings.ToLower(strings.TrimSpace(p.Field))
	p.DocType = strings.ToLower(strings.TrimSpace(p.DocType))
	p.Deadline = p.Deadline.UTC()
}

func (p Proposal) validate(now time.Time) error {
	if res := inputval.Validate(p); res.HasErrors() {
		return apperr.Validation("%s", res.All())
	}
	if p.Capacity < models.MinChallengeCapacity {
		return apperr.Validation("Capacity must be at least %d.", models.MinChallengeCapacity)
	}
	if !p.Deadline.After(now) {
		return apperr.Validation("Deadline must be in the future.")
	}
	return nil
}

// Propose creates a pending challenge owned by the actor.
func (e *Engine) Propose(ctx context.Context, actor models.Actor, p Proposal) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	p.normalize()
	if err := p.validate(time.Now().UTC()); err != nil {
		return models.Challenge{}, err
	}

	c, err := e.challenges.Create(ctx, models.Challenge{
		Title:    p.Title,
		Content:  p.Content,
		Source:   p.Source,
		Field:    p.Field,
		DocType:  p.DocType,
		Capacity: p.Capacity,
		Deadline: p.Deadline,
		OwnerID:  actor.UserID,
	})
	if err != nil {
		return models.Challenge{}, apperr.Internal("create challenge", err)
	}
	e.metrics.Transition(string(c.Status))
	return c, nil
}
