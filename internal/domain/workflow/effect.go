package workflow

import (
	"time"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// EffectFunc computes the transition-specific partial update. Effects are
// pure: they read the draft and params and return a patch; the engine adds
// the destination status and persists.
type EffectFunc func(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch

func effectCompleteGeneration(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	patch := &entity.DraftPatch{GeneratedAt: &now}
	if url := p.GetString("pdf_url"); url != "" {
		patch.PDFURL = &url
	}
	if size, ok := p.GetInt("pdf_size_bytes"); ok {
		patch.PDFSizeBytes = &size
	}
	if score, ok := p.GetFloat("quality_score"); ok {
		patch.QualityScore = &score
	}
	return patch
}

func effectFailGeneration(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	reason := p.GetString("reason")
	if reason == "" {
		reason = "generation failed"
	}
	return &entity.DraftPatch{
		FailedAt:      &now,
		FailureReason: &reason,
	}
}

func effectRetry(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	count := d.RevisionCount + 1
	return &entity.DraftPatch{
		RevisionCount: &count,
		ClearFailure:  true,
	}
}

func effectSubmitForApproval(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	return &entity.DraftPatch{ReviewedAt: &now}
}

func effectApprove(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	return &entity.DraftPatch{ApprovedAt: &now}
}

func effectRequestRevisions(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	comments := p.GetString("comments")
	count := d.RevisionCount + 1
	return &entity.DraftPatch{
		BrokerComments: &comments,
		RevisionCount:  &count,
	}
}

func effectDistribute(d *entity.Draft, p Params, now time.Time) *entity.DraftPatch {
	return &entity.DraftPatch{
		DistributedAt:        &now,
		DistributionChannels: p.GetStrings("channels"),
	}
}
