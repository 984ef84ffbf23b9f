package entity

import "time"

// Draft represents one piece of marketing collateral moving through the
// approval pipeline. Status is mutated exclusively by the workflow engine.
type Draft struct {
	ID                   string     `json:"id"`
	ListingID            string     `json:"listing_id"`
	Status               string     `json:"status"`
	RevisionCount        int        `json:"revision_count"`
	QualityScore         float64    `json:"quality_score"`
	PDFURL               string     `json:"pdf_url,omitempty"`
	PDFSizeBytes         int64      `json:"pdf_size_bytes,omitempty"`
	BrokerComments       string     `json:"broker_comments,omitempty"`
	DistributionChannels []string   `json:"distribution_channels,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	GeneratedAt          *time.Time `json:"generated_at,omitempty"`
	FailedAt             *time.Time `json:"failed_at,omitempty"`
	ReviewedAt           *time.Time `json:"reviewed_at,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	DistributedAt        *time.Time `json:"distributed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the draft. The engine hands copies to guards
// and effects so a failed transition can never leak a partial mutation.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	cp := *d
	if d.DistributionChannels != nil {
		cp.DistributionChannels = append([]string(nil), d.DistributionChannels...)
	}
	cloneTime := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := *t
		return &v
	}
	cp.GeneratedAt = cloneTime(d.GeneratedAt)
	cp.FailedAt = cloneTime(d.FailedAt)
	cp.ReviewedAt = cloneTime(d.ReviewedAt)
	cp.ApprovedAt = cloneTime(d.ApprovedAt)
	cp.DistributedAt = cloneTime(d.DistributedAt)
	return &cp
}

// DraftPatch is the partial update a transition applies on success. Nil
// pointer fields are left untouched by the store. ClearFailure resets
// failed_at and failure_reason together, which a pointer field cannot express.
type DraftPatch struct {
	Status               string
	RevisionCount        *int
	QualityScore         *float64
	PDFURL               *string
	PDFSizeBytes         *int64
	BrokerComments       *string
	DistributionChannels []string
	FailureReason        *string
	GeneratedAt          *time.Time
	FailedAt             *time.Time
	ReviewedAt           *time.Time
	ApprovedAt           *time.Time
	DistributedAt        *time.Time
	ClearFailure         bool
}

// Apply merges the patch into a copy of the draft and stamps updatedAt.
// Both store backends go through this so the merge semantics stay identical.
func (p *DraftPatch) Apply(d *Draft, updatedAt time.Time) *Draft {
	out := d.Clone()
	if p.Status != "" {
		out.Status = p.Status
	}
	if p.RevisionCount != nil {
		out.RevisionCount = *p.RevisionCount
	}
	if p.QualityScore != nil {
		out.QualityScore = *p.QualityScore
	}
	if p.PDFURL != nil {
		out.PDFURL = *p.PDFURL
	}
	if p.PDFSizeBytes != nil {
		out.PDFSizeBytes = *p.PDFSizeBytes
	}
	if p.BrokerComments != nil {
		out.BrokerComments = *p.BrokerComments
	}
	if p.DistributionChannels != nil {
		out.DistributionChannels = append([]string(nil), p.DistributionChannels...)
	}
	if p.FailureReason != nil {
		out.FailureReason = *p.FailureReason
	}
	if p.GeneratedAt != nil {
		out.GeneratedAt = p.GeneratedAt
	}
	if p.FailedAt != nil {
		out.FailedAt = p.FailedAt
	}
	if p.ReviewedAt != nil {
		out.ReviewedAt = p.ReviewedAt
	}
	if p.ApprovedAt != nil {
		out.ApprovedAt = p.ApprovedAt
	}
	if p.DistributedAt != nil {
		out.DistributedAt = p.DistributedAt
	}
	if p.ClearFailure {
		out.FailedAt = nil
		out.FailureReason = ""
	}
	out.UpdatedAt = updatedAt
	return out
}
