// Package worker processes background invitation email jobs dequeued from
// Redis: render the invite, deliver it, update the registro and campaign.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/internal/invitations"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/pkg/queue"
)

const retryBackoff = 10 * time.Second

// InvitationProcessor consumes invitation email jobs.
type InvitationProcessor struct {
	registroRepo *registros.Repository
	campaignRepo *invitations.Repository
	mailer       Mailer
	jobs         *queue.Queue
	baseURL      string
	logger       *zap.Logger
}

// NewInvitationProcessor creates the campaign email processor. baseURL is the
// public origin invitation links are built against.
func NewInvitationProcessor(registroRepo *registros.Repository, campaignRepo *invitations.Repository, mailer Mailer, jobs *queue.Queue, baseURL string, logger *zap.Logger) *InvitationProcessor {
	return &InvitationProcessor{
		registroRepo: registroRepo,
		campaignRepo: campaignRepo,
		mailer:       mailer,
		jobs:         jobs,
		baseURL:      baseURL,
		logger:       logger,
	}
}

// Run consumes jobs until ctx is cancelled.
func (p *InvitationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(retryBackoff)
			continue
		}
		if job == nil || job.Type != queue.JobTypeInvitation {
			continue
		}

		var payload queue.InvitationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			p.logger.Warn("invalid invitation payload", zap.Error(err), zap.String("job_id", job.ID))
			continue
		}

		if err := p.process(ctx, payload); err != nil {
			p.logger.Error("invitation delivery failed", zap.Error(err),
				zap.String("job_id", job.ID), zap.String("registro_id", payload.RegistroID.String()))
			if rerr := p.jobs.Retry(ctx, job); rerr != nil {
				p.logger.Error("retry failed", zap.Error(rerr), zap.String("job_id", job.ID))
			}
			if job.Attempt >= queue.MaxRetries {
				p.recordFailure(ctx, payload, err)
			}
			time.Sleep(retryBackoff)
			continue
		}

		if err := p.campaignRepo.RecordDelivery(ctx, payload.CampaignID, true); err != nil {
			p.logger.Warn("record delivery failed", zap.Error(err), zap.String("campaign_id", payload.CampaignID.String()))
		}
	}
}

func (p *InvitationProcessor) process(_ context.Context, payload queue.InvitationPayload) error {
	inv := Invitation{
		RecipientEmail: payload.RecipientEmail,
		RecipientName:  payload.RecipientName,
		EventName:      payload.EventName,
		Subject:        payload.Subject,
		InviteLink:     p.baseURL + "/invitacion/" + payload.InviteToken,
	}
	return p.mailer.SendInvitation(inv)
}

// recordFailure marks a permanently failed delivery on the registro and the
// campaign, once the job is out of retries.
func (p *InvitationProcessor) recordFailure(ctx context.Context, payload queue.InvitationPayload, cause error) {
	if err := p.registroRepo.SetInvitationError(ctx, payload.RegistroID, cause.Error()); err != nil {
		p.logger.Warn("record invitation error failed", zap.Error(err))
	}
	if err := p.campaignRepo.RecordDelivery(ctx, payload.CampaignID, false); err != nil {
		p.logger.Warn("record delivery failed", zap.Error(err))
	}
}
