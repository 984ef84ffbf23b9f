package workflow

import (
	"fmt"
	"strings"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// retryLimit caps generation retries. The guard reads the shared
// revision_count, so broker revision requests consume the same budget.
const retryLimit = 3

// minApprovalScore is the quality score a draft needs before it can be
// submitted for broker approval.
const minApprovalScore = 50.0

// GuardInput is everything a guard may inspect: the draft, the source listing
// context (nil when the provider has nothing), and the call params.
type GuardInput struct {
	Draft   *entity.Draft
	Listing *entity.ListingContext
	Params  Params
}

// GuardResult reports validity plus every human-readable failure reason.
type GuardResult struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// GuardFunc is a pure precondition check. Guards never mutate state; they
// only inspect and report.
type GuardFunc func(in GuardInput) GuardResult

func guardOK() GuardResult {
	return GuardResult{Valid: true}
}

func guardFail(reasons ...string) GuardResult {
	return GuardResult{Valid: false, Reasons: reasons}
}

// guardListingComplete backs the validate transition: the source listing must
// carry an address, a listing type, a broker contact, and at least one photo.
func guardListingComplete(in GuardInput) GuardResult {
	if in.Listing == nil {
		return guardFail("no source listing context available")
	}

	var reasons []string
	if strings.TrimSpace(in.Listing.Address) == "" {
		reasons = append(reasons, "listing has no address")
	}
	if strings.TrimSpace(in.Listing.ListingType) == "" {
		reasons = append(reasons, "listing has no listing type")
	}
	if strings.TrimSpace(in.Listing.BrokerContact) == "" {
		reasons = append(reasons, "listing has no broker contact")
	}
	if in.Listing.PhotoCount < 1 {
		reasons = append(reasons, "listing has no photos")
	}

	if len(reasons) > 0 {
		return guardFail(reasons...)
	}
	return guardOK()
}

// guardGenerationResult backs complete_generation: the params must carry a
// PDF reference (URL or byte size) and a quality score.
func guardGenerationResult(in GuardInput) GuardResult {
	var reasons []string

	size, hasSize := in.Params.GetInt("pdf_size_bytes")
	if in.Params.GetString("pdf_url") == "" && (!hasSize || size <= 0) {
		reasons = append(reasons, "no PDF reference (pdf_url or pdf_size_bytes) in params")
	}
	if _, ok := in.Params.GetFloat("quality_score"); !ok {
		reasons = append(reasons, "no quality_score in params")
	}

	if len(reasons) > 0 {
		return guardFail(reasons...)
	}
	return guardOK()
}

// guardRetryBudget backs retry: prior retry count must be under the limit.
func guardRetryBudget(in GuardInput) GuardResult {
	if in.Draft.RevisionCount >= retryLimit {
		return guardFail(fmt.Sprintf("retry limit of %d reached (revision count is %d)", retryLimit, in.Draft.RevisionCount))
	}
	return guardOK()
}

// guardQualityScore backs submit_for_approval.
func guardQualityScore(in GuardInput) GuardResult {
	if in.Draft.QualityScore < minApprovalScore {
		return guardFail(fmt.Sprintf("quality score %.1f is below the approval threshold of %.0f", in.Draft.QualityScore, minApprovalScore))
	}
	return guardOK()
}

// guardBrokerComments backs request_revisions: comments must be non-empty.
func guardBrokerComments(in GuardInput) GuardResult {
	if strings.TrimSpace(in.Params.GetString("comments")) == "" {
		return guardFail("broker comments are required when requesting revisions")
	}
	return guardOK()
}

// guardPDFPresent backs distribute: a PDF reference must exist on the draft.
func guardPDFPresent(in GuardInput) GuardResult {
	if in.Draft.PDFURL == "" && in.Draft.PDFSizeBytes <= 0 {
		return guardFail("draft has no generated PDF to distribute")
	}
	return guardOK()
}
